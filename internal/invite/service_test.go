package invite

import (
	"context"
	"testing"

	"github.com/hitoshi/giftdesk/internal/apiclient/apiclienttest"
)

func TestService_Summary(t *testing.T) {
	api := apiclienttest.New().Respond(pathSummary, map[string]any{
		"inviteCode":    "ABC123",
		"invitedCount":  4,
		"totalEarnings": 7.5,
	})
	sum, err := NewService(api).Summary(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Summary がエラーを返した: %v", err)
	}
	if sum.InviteCode != "ABC123" || sum.InvitedCount != 4 || sum.TotalEarnings != 7.5 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestDetailsList_ShortPageEndsPaging(t *testing.T) {
	api := apiclienttest.New().Respond(pathDetails, []map[string]any{{"userId": "u1"}})
	list := NewDetailsList(NewService(api))

	if err := list.Fetch(context.Background(), "tok", true); err != nil {
		t.Fatalf("Fetch がエラーを返した: %v", err)
	}
	if list.Name() != DetailsListName {
		t.Errorf("Name = %q", list.Name())
	}
	s := list.Snapshot()
	if len(s.Items) != 1 || s.HasMore {
		t.Errorf("state = %+v, want 1 item without more", s)
	}
}
