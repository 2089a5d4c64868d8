package client

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

func TestResolveView(t *testing.T) {
	api := newFakeAPI(t)
	s := NewSession(newTestClient(t, api), nil)
	defer s.Close()

	assert.Equal(t, ViewCallback, ResolveView(url.Values{"token": {"x"}}, s))
	assert.Equal(t, ViewCallback, ResolveView(url.Values{"message": {"domain not allowed"}}, nil))
	assert.Equal(t, ViewLogin, ResolveView(url.Values{}, s))
	assert.Equal(t, ViewLogin, ResolveView(nil, nil))

	require.NoError(t, s.HandleLoginCallback(context.Background(), api.token(domain.RoleStudent)))
	assert.Equal(t, ViewDashboard, ResolveView(url.Values{}, s))
}

func TestPanelsFor(t *testing.T) {
	assert.Equal(t, []Panel{PanelUsers, PanelSubjects}, PanelsFor(domain.RoleAdmin))
	assert.Contains(t, PanelsFor(domain.RoleWellbeing), PanelSessionReview)
	assert.Contains(t, PanelsFor(domain.RoleStudent), PanelTutorApplication)
	assert.NotContains(t, PanelsFor(domain.RoleStudent), PanelWeeklyTemplate)
	assert.Len(t, PanelsFor(domain.RoleTutor), 4)
	assert.Nil(t, PanelsFor(""))
}
