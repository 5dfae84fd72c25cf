package surfacer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/i18n"
)

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func TestAdminListSeesNewTicketToast(t *testing.T) {
	s := New(domain.RoleAdmin, domain.LanguageEnglish)

	effects := s.OnTicketInserted(domain.Ticket{ID: "T1"})
	require.Len(t, effects, 1)
	assert.Equal(t, EffectToast, effects[0].Kind)
	assert.Equal(t, "New support ticket received", effects[0].Message)

	assert.Empty(t, New(domain.RoleUser, domain.LanguageEnglish).OnTicketInserted(domain.Ticket{ID: "T1"}))
}

func TestAdminStatusChangeRefreshesStatsSilently(t *testing.T) {
	s := New(domain.RoleAdmin, domain.LanguageEnglish)
	old := domain.Ticket{ID: "T1", Status: domain.TicketStatusOpen}
	updated := domain.Ticket{ID: "T1", Status: domain.TicketStatusResolved}

	effects := s.OnTicketUpdated(&old, &updated)
	assert.Equal(t, []EffectKind{EffectStatRefresh}, kinds(effects))
}

func TestOwnerStatusChangeToastsLocalizedLabel(t *testing.T) {
	old := domain.Ticket{ID: "T1", Status: domain.TicketStatusOpen}
	updated := domain.Ticket{ID: "T1", Status: domain.TicketStatusWaitingUser}

	en := New(domain.RoleUser, domain.LanguageEnglish).OnTicketUpdated(&old, &updated)
	require.NotEmpty(t, en)
	assert.Contains(t, en[0].Message, i18n.StatusLabel(domain.TicketStatusWaitingUser, domain.LanguageEnglish))

	ar := New(domain.RoleUser, domain.LanguageArabic).OnTicketUpdated(&old, &updated)
	require.NotEmpty(t, ar)
	assert.Contains(t, ar[0].Message, i18n.StatusLabel(domain.TicketStatusWaitingUser, domain.LanguageArabic))
}

func TestUnchangedStatusStaysSilent(t *testing.T) {
	s := New(domain.RoleUser, domain.LanguageEnglish)
	old := domain.Ticket{ID: "T1", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow}
	updated := domain.Ticket{ID: "T1", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh}

	assert.Empty(t, s.OnTicketUpdated(&old, &updated))
}

func TestAdminDetailMessageRules(t *testing.T) {
	s := New(domain.RoleAdmin, domain.LanguageEnglish)

	fromUser := s.OnMessageInserted(domain.TicketMessage{SenderType: domain.SenderTypeUser})
	require.Len(t, fromUser, 1)
	assert.Equal(t, EffectToast, fromUser[0].Kind)

	// The admin's own echo stays silent.
	assert.Empty(t, s.OnMessageInserted(domain.TicketMessage{SenderType: domain.SenderTypeAdmin}))
}

func TestOwnerDetailMessageRules(t *testing.T) {
	s := New(domain.RoleUser, domain.LanguageArabic)

	fromAdmin := s.OnMessageInserted(domain.TicketMessage{SenderType: domain.SenderTypeAdmin})
	assert.Equal(t, []EffectKind{EffectToast, EffectSound, EffectBadge}, kinds(fromAdmin))
	assert.Equal(t, "رد فريق الدعم على تذكرتك", fromAdmin[0].Message)

	// Internal notes must never surface, whatever the store does.
	assert.Empty(t, s.OnMessageInserted(domain.TicketMessage{SenderType: domain.SenderTypeAdmin, IsInternal: true}))
	// The owner's own echo stays silent.
	assert.Empty(t, s.OnMessageInserted(domain.TicketMessage{SenderType: domain.SenderTypeUser}))
}

func TestNotificationInsertedUsesLocalizedTitle(t *testing.T) {
	s := New(domain.RoleUser, domain.LanguageArabic)

	effects := s.OnNotificationInserted(domain.Notification{TitleEn: "Sale", TitleAr: "تخفيضات"})
	require.Len(t, effects, 2)
	assert.Equal(t, "تخفيضات", effects[0].Message)
	assert.Equal(t, EffectNotification, effects[1].Kind)
}

func TestMutationFailureToast(t *testing.T) {
	en := New(domain.RoleAdmin, domain.LanguageEnglish).OnMutationFailed(errors.New("boom"))
	require.Len(t, en, 1)
	assert.Equal(t, EffectErrorToast, en[0].Kind)
	assert.Equal(t, "Something went wrong, please try again", en[0].Message)
}
