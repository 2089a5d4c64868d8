package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

// Me is the current user plus the role the token is acting as.
type Me struct {
	domain.User
	ActiveRole string `json:"rolActivo"`
}

type AuthService struct{ c *Client }

func (s *AuthService) Me(ctx context.Context) (Me, error) {
	var me Me
	err := s.c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &me)
	return me, err
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// SwitchRole returns a new token acting as role.
func (s *AuthService) SwitchRole(ctx context.Context, role string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	q := url.Values{"targetRole": {role}}
	if err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/switch-role", q, nil, &out); err != nil {
		return "", err
	}

	return out.Token, nil
}

func (s *AuthService) UpdatePhone(ctx context.Context, userID uint, phone string) (domain.User, error) {
	var user domain.User
	q := url.Values{"phoneNumber": {phone}, "userId": {strconv.FormatUint(uint64(userID), 10)}}
	err := s.c.doJSON(ctx, http.MethodPut, "/api/usuarios/phone", q, nil, &user)
	return user, err
}

type AdminService struct{ c *Client }

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, nil, &users)
	return users, err
}

func (s *AdminService) UpdateRoles(ctx context.Context, userID uint, roles []string) (domain.User, error) {
	var user domain.User
	err := s.c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/roles", userID), nil, roles, &user)
	return user, err
}

func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", userID), nil, nil, nil)
}

type SubjectInput struct {
	Name string `json:"nombre_materia"`
	Code string `json:"codigoMateria"`
}

type SubjectService struct{ c *Client }

func (s *SubjectService) List(ctx context.Context) ([]domain.Subject, error) {
	var subjects []domain.Subject
	err := s.c.doJSON(ctx, http.MethodGet, "/api/materias", nil, nil, &subjects)
	return subjects, err
}

func (s *SubjectService) Get(ctx context.Context, id uint) (domain.Subject, error) {
	var subject domain.Subject
	err := s.c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/materias/%d", id), nil, nil, &subject)
	return subject, err
}

func (s *SubjectService) Create(ctx context.Context, in SubjectInput) (domain.Subject, error) {
	var subject domain.Subject
	err := s.c.doJSON(ctx, http.MethodPost, "/api/materias", nil, in, &subject)
	return subject, err
}

func (s *SubjectService) Update(ctx context.Context, id uint, in SubjectInput) (domain.Subject, error) {
	var subject domain.Subject
	err := s.c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/materias/%d", id), nil, in, &subject)
	return subject, err
}

func (s *SubjectService) Delete(ctx context.Context, id uint) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/materias/%d", id), nil, nil, nil)
}

func (s *SubjectService) CheckCode(ctx context.Context, code string) (domain.CodeCheck, error) {
	var check domain.CodeCheck
	err := s.c.doJSON(ctx, http.MethodGet, "/api/materias/verificar-codigo/"+url.PathEscape(code), nil, nil, &check)
	return check, err
}

type TutorRequestService struct{ c *Client }

func (s *TutorRequestService) Submit(ctx context.Context, subjectID uint, academicRecord, supportFile Attachment) (domain.TutorRequest, error) {
	var created domain.TutorRequest
	err := s.c.doMultipart(ctx, "/api/tutor-requests",
		map[string]string{"idMateria": strconv.FormatUint(uint64(subjectID), 10)},
		map[string]Attachment{"historiaAcademica": academicRecord, "archivoSoporte": supportFile},
		&created,
	)
	return created, err
}

func (s *TutorRequestService) list(ctx context.Context, path string) ([]domain.TutorRequest, error) {
	var reqs []domain.TutorRequest
	err := s.c.doJSON(ctx, http.MethodGet, path, nil, nil, &reqs)
	return reqs, err
}

func (s *TutorRequestService) Mine(ctx context.Context) ([]domain.TutorRequest, error) {
	return s.list(ctx, "/api/tutor-requests/my-requests")
}

func (s *TutorRequestService) Pending(ctx context.Context) ([]domain.TutorRequest, error) {
	return s.list(ctx, "/api/tutor-requests/pending")
}

func (s *TutorRequestService) History(ctx context.Context) ([]domain.TutorRequest, error) {
	return s.list(ctx, "/api/tutor-requests/history")
}

func (s *TutorRequestService) Review(ctx context.Context, id uint, status domain.RequestStatus, observation string) (domain.TutorRequest, error) {
	in := struct {
		Status      domain.RequestStatus `json:"estado"`
		Observation string               `json:"observacion,omitempty"`
	}{status, observation}

	var reviewed domain.TutorRequest
	err := s.c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/tutor-requests/%d/status", id), nil, in, &reviewed)
	return reviewed, err
}

// Download copies a stored document into w.
func (s *TutorRequestService) Download(ctx context.Context, fileName string, w io.Writer) error {
	return s.c.doJSON(ctx, http.MethodGet, "/api/tutor-requests/download/"+url.PathEscape(fileName), nil, nil, w)
}

type RemoveSubjectResult struct {
	Message      string `json:"message"`
	TutorRevoked bool   `json:"rolRevocado"`
}

type TutorSubjectService struct{ c *Client }

func (s *TutorSubjectService) Mine(ctx context.Context) ([]domain.TutorSubject, error) {
	var links []domain.TutorSubject
	err := s.c.doJSON(ctx, http.MethodGet, "/api/tutor-subjects/my-subjects", nil, nil, &links)
	return links, err
}

func (s *TutorSubjectService) Remove(ctx context.Context, id uint) (RemoveSubjectResult, error) {
	var out RemoveSubjectResult
	err := s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/tutor-subjects/%d", id), nil, nil, &out)
	return out, err
}

type AvailabilityService struct{ c *Client }

type monthInput struct {
	Month int `json:"mes"`
	Year  int `json:"anio"`
}

func (s *AvailabilityService) SaveWeeklyTemplate(ctx context.Context, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error) {
	var saved []domain.WeeklyBlock
	err := s.c.doJSON(ctx, http.MethodPost, "/api/disponibilidad/plantilla-semanal", nil, blocks, &saved)
	return saved, err
}

func (s *AvailabilityService) WeeklyTemplate(ctx context.Context) ([]domain.WeeklyBlock, error) {
	var blocks []domain.WeeklyBlock
	err := s.c.doJSON(ctx, http.MethodGet, "/api/disponibilidad/plantilla-semanal", nil, nil, &blocks)
	return blocks, err
}

func (s *AvailabilityService) GenerateMonthly(ctx context.Context, month, year int) (domain.GenerationResult, error) {
	var result domain.GenerationResult
	err := s.c.doJSON(ctx, http.MethodPost, "/api/disponibilidad/generar-mensual", nil, monthInput{month, year}, &result)
	return result, err
}

func (s *AvailabilityService) Monthly(ctx context.Context, month, year int) ([]domain.MonthlyBlock, error) {
	var blocks []domain.MonthlyBlock
	err := s.c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/disponibilidad/mensual/%d/%d", month, year), nil, nil, &blocks)
	return blocks, err
}

func (s *AvailabilityService) ValidateMonthly(ctx context.Context, month, year int) (domain.MonthValidation, error) {
	var result domain.MonthValidation
	err := s.c.doJSON(ctx, http.MethodPost, "/api/disponibilidad/validar-confirmar", nil, monthInput{month, year}, &result)
	return result, err
}

func (s *AvailabilityService) DeleteBlock(ctx context.Context, id uint) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/disponibilidad/bloque/%d", id), nil, nil, nil)
}

func (s *AvailabilityService) ChangeModality(ctx context.Context, id uint, modality domain.Modality) (domain.MonthlyBlock, error) {
	in := struct {
		Modality domain.Modality `json:"modalidad"`
	}{modality}

	var block domain.MonthlyBlock
	err := s.c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/disponibilidad/bloque/%d/modalidad", id), nil, in, &block)
	return block, err
}

func (s *AvailabilityService) BySubject(ctx context.Context, subjectID uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	var blocks []domain.MonthlyBlock
	q := url.Values{"fechaInicio": {from.String()}, "fechaFin": {to.String()}}
	err := s.c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/disponibilidad/por-materia/%d", subjectID), q, nil, &blocks)
	return blocks, err
}

type TutoringService struct{ c *Client }

func (s *TutoringService) Reserve(ctx context.Context, blockID, subjectID uint, topic string) (domain.TutoringSession, error) {
	in := struct {
		BlockID   uint   `json:"bloqueId"`
		SubjectID uint   `json:"materiaId"`
		Topic     string `json:"nombreTema"`
	}{blockID, subjectID, topic}

	var session domain.TutoringSession
	err := s.c.doJSON(ctx, http.MethodPost, "/api/tutorias/reservar", nil, in, &session)
	return session, err
}

func statusQuery(states []domain.SessionStatus) url.Values {
	if len(states) == 0 {
		return nil
	}

	names := make([]string, 0, len(states))
	for _, st := range states {
		names = append(names, string(st))
	}

	return url.Values{"estados": {strings.Join(names, ",")}}
}

// Mine lists the caller's sessions as a student.
func (s *TutoringService) Mine(ctx context.Context, states ...domain.SessionStatus) ([]domain.TutoringSession, error) {
	var sessions []domain.TutoringSession
	err := s.c.doJSON(ctx, http.MethodGet, "/api/tutorias/estudiante", statusQuery(states), nil, &sessions)
	return sessions, err
}

// Assigned lists the caller's sessions as a tutor.
func (s *TutoringService) Assigned(ctx context.Context, states ...domain.SessionStatus) ([]domain.TutoringSession, error) {
	var sessions []domain.TutoringSession
	err := s.c.doJSON(ctx, http.MethodGet, "/api/tutorias/tutor", statusQuery(states), nil, &sessions)
	return sessions, err
}

func (s *TutoringService) put(ctx context.Context, id uint, action string, in interface{}) (domain.TutoringSession, error) {
	var session domain.TutoringSession
	err := s.c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/tutorias/%d/%s", id, action), nil, in, &session)
	return session, err
}

func (s *TutoringService) SetLink(ctx context.Context, id uint, link string) (domain.TutoringSession, error) {
	return s.put(ctx, id, "link", map[string]string{"linkTutoria": link})
}

func (s *TutoringService) Cancel(ctx context.Context, id uint, observations string) (domain.TutoringSession, error) {
	return s.put(ctx, id, "cancelar", map[string]string{"observaciones": observations})
}

func (s *TutoringService) ConfirmAsStudent(ctx context.Context, id uint) (domain.TutoringSession, error) {
	return s.put(ctx, id, "confirmar-estudiante", nil)
}

func (s *TutoringService) ConfirmAsTutor(ctx context.Context, id uint) (domain.TutoringSession, error) {
	return s.put(ctx, id, "confirmar-tutor", nil)
}

func (s *TutoringService) PendingReview(ctx context.Context) ([]domain.TutoringSession, error) {
	var sessions []domain.TutoringSession
	err := s.c.doJSON(ctx, http.MethodGet, "/api/tutorias/pendientes-revision", nil, nil, &sessions)
	return sessions, err
}

func (s *TutoringService) Review(ctx context.Context, id uint, held bool) (domain.TutoringSession, error) {
	return s.put(ctx, id, "revision", map[string]bool{"realizada": held})
}
