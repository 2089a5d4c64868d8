package v1

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/service"
)

type fakeSubjectService struct {
	subjects map[uint]domain.Subject
}

func (f *fakeSubjectService) ListSubjects(context.Context) ([]domain.Subject, error) {
	out := make([]domain.Subject, 0, len(f.subjects))
	for _, s := range f.subjects {
		out = append(out, s)
	}

	return out, nil
}

func (f *fakeSubjectService) GetSubject(_ context.Context, id uint) (domain.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return domain.Subject{}, service.ErrSubjectNotFound
	}

	return s, nil
}

func (f *fakeSubjectService) CreateSubject(_ context.Context, subject domain.Subject) (domain.Subject, error) {
	for _, s := range f.subjects {
		if s.Code == subject.Code {
			return domain.Subject{}, fmt.Errorf("%w: the code %s is already registered for subject %s", service.ErrSubjectCodeExists, s.Code, s.Name)
		}
	}
	subject.ID = uint(len(f.subjects) + 1)
	f.subjects[subject.ID] = subject

	return subject, nil
}

func (f *fakeSubjectService) UpdateSubject(_ context.Context, subject domain.Subject) (domain.Subject, error) {
	if _, ok := f.subjects[subject.ID]; !ok {
		return domain.Subject{}, service.ErrSubjectNotFound
	}
	f.subjects[subject.ID] = subject

	return subject, nil
}

func (f *fakeSubjectService) DeleteSubject(_ context.Context, id uint) error {
	delete(f.subjects, id)
	return nil
}

func (f *fakeSubjectService) CheckCode(_ context.Context, code string) (domain.CodeCheck, error) {
	return domain.CodeCheck{Exists: false, Message: "available " + code}, nil
}

func TestSubjectHandler(t *testing.T) {
	svc := &fakeSubjectService{subjects: map[uint]domain.Subject{
		1: {ID: 1, Name: "Cálculo", Code: "MAT-101"},
	}}
	h := NewSubjectHandler(svc)
	r := gin.New()
	r.POST("/materias", h.HandleCreateSubject)
	r.GET("/materias/:subjectID", h.HandleGetSubject)
	r.PUT("/materias/:subjectID", h.HandleUpdateSubject)

	rec := doJSON(r, http.MethodPost, "/materias", map[string]string{"nombre_materia": "Física", "codigoMateria": "FIS-201"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(r, http.MethodPost, "/materias", map[string]string{"nombre_materia": "Otra", "codigoMateria": "MAT-101"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "already registered for subject Cálculo")

	rec = doJSON(r, http.MethodPost, "/materias", map[string]string{"nombre_materia": "Sin código", "codigoMateria": "ABC"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodGet, "/materias/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodPut, "/materias/1", map[string]string{"nombre_materia": "Cálculo I", "codigoMateria": "MAT-101"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cálculo I", svc.subjects[1].Name)
}

func TestTutorRequestHandler_HandleDownload(t *testing.T) {
	dir := t.TempDir()
	store, err := service.NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "record.pdf"), []byte("%PDF-1.4"), 0o600))

	svc := service.NewTutorRequestService(nil, nil, store, time.UTC)
	h := NewTutorRequestHandler(svc, newFakeUsers(ana))
	r := gin.New()
	r.GET("/download/:fileName", h.HandleDownload)

	rec := doJSON(r, http.MethodGet, "/download/record.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = doJSON(r, http.MethodGet, "/download/..secret.pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodGet, "/download/missing.pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilityHandler_HandleMonthly_BadMonth(t *testing.T) {
	h := NewAvailabilityHandler(nil, newFakeUsers(luis))
	r := gin.New()
	r.GET("/mensual/:month/:year", as(luis, domain.RoleTutor), h.HandleMonthly)

	rec := doJSON(r, http.MethodGet, "/mensual/13/2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodGet, "/mensual/marzo/2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
