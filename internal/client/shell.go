package client

import (
	"net/url"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type View string

const (
	ViewCallback  View = "callback"
	ViewDashboard View = "dashboard"
	ViewLogin     View = "login"
)

type Panel string

const (
	PanelUsers              Panel = "users"
	PanelSubjects           Panel = "subjects"
	PanelTutorRequestReview Panel = "tutor-request-review"
	PanelSessionReview      Panel = "session-review"
	PanelAvailability       Panel = "availability"
	PanelMySessions         Panel = "my-sessions"
	PanelTutorApplication   Panel = "tutor-application"
	PanelWeeklyTemplate     Panel = "weekly-template"
	PanelMonthlyCalendar    Panel = "monthly-calendar"
	PanelAssignedSessions   Panel = "assigned-sessions"
	PanelMySubjects         Panel = "my-subjects"
)

// ResolveView decides what to show for a landing URL query.
// The login redirect carries either token or message.
func ResolveView(query url.Values, s *Session) View {
	if query.Get("token") != "" || query.Get("message") != "" {
		return ViewCallback
	}
	if s != nil && s.IsAuthenticated() {
		return ViewDashboard
	}

	return ViewLogin
}

func PanelsFor(activeRole string) []Panel {
	switch activeRole {
	case domain.RoleAdmin:
		return []Panel{PanelUsers, PanelSubjects}
	case domain.RoleWellbeing:
		return []Panel{PanelUsers, PanelSubjects, PanelTutorRequestReview, PanelSessionReview}
	case domain.RoleStudent:
		return []Panel{PanelAvailability, PanelMySessions, PanelTutorApplication}
	case domain.RoleTutor:
		return []Panel{PanelWeeklyTemplate, PanelMonthlyCalendar, PanelAssignedSessions, PanelMySubjects}
	default:
		return nil
	}
}
