package order

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/giftdesk/internal/apiclient/apiclienttest"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

func TestService_List(t *testing.T) {
	api := apiclienttest.New().Respond(pathList, map[string]any{
		"list": []map[string]any{
			{"id": "o1", "status": "pending", "faceValue": 100},
			{"id": "o2", "status": "completed"},
		},
	})
	svc := NewService(api)

	orders, err := svc.List(context.Background(), "tok", 2, 10)
	if err != nil {
		t.Fatalf("List がエラーを返した: %v", err)
	}
	if len(orders) != 2 || orders[0].Status != model.OrderStatusPending || orders[0].FaceValue != 100 {
		t.Errorf("orders = %+v", orders)
	}
	body := api.LastBody()
	if body["token"] != "tok" || body["page"] != float64(2) || body["pageSize"] != float64(10) {
		t.Errorf("body = %v", body)
	}
}

func TestService_Detail(t *testing.T) {
	api := apiclienttest.New().Respond(pathDetail, map[string]any{
		"id":           "o1",
		"orderNo":      "GC-1",
		"status":       "rejected",
		"rejectReason": "Card already redeemed",
		"cardImages":   []string{"a.png"},
	})
	svc := NewService(api)

	d, err := svc.Detail(context.Background(), "tok", " o1 ")
	if err != nil {
		t.Fatalf("Detail がエラーを返した: %v", err)
	}
	if d.OrderNo != "GC-1" || d.Status != model.OrderStatusRejected || d.RejectReason == "" || len(d.CardImages) != 1 {
		t.Errorf("detail = %+v", d)
	}
	if api.LastBody()["orderId"] != "o1" {
		t.Errorf("body = %v", api.LastBody())
	}
}

func TestService_Detail_EmptyID(t *testing.T) {
	api := apiclienttest.New()
	svc := NewService(api)

	_, err := svc.Detail(context.Background(), "tok", "  ")
	if !errors.Is(err, ErrEmptyOrderID) {
		t.Errorf("err = %v, want ErrEmptyOrderID", err)
	}
	if len(api.Calls()) != 0 {
		t.Error("空のIDでAPIが呼ばれた")
	}
}

func TestNewList_PagesThroughOrders(t *testing.T) {
	api := apiclienttest.New().Respond(pathList, []map[string]any{{"id": "o1"}, {"id": "o2"}})
	list := NewList(NewService(api), pager.WithPageSize(2))

	if list.Name() != ListName {
		t.Errorf("Name = %q", list.Name())
	}
	if err := list.Fetch(context.Background(), "tok", true); err != nil {
		t.Fatalf("Fetch がエラーを返した: %v", err)
	}
	s := list.Snapshot()
	if len(s.Items) != 2 || !s.HasMore || !s.Initialized {
		t.Errorf("state = %+v", s)
	}

	if err := list.LoadMore(context.Background(), "tok"); err != nil {
		t.Fatalf("LoadMore がエラーを返した: %v", err)
	}
	if api.LastBody()["page"] != float64(1) {
		t.Errorf("LoadMore page = %v, want 1", api.LastBody()["page"])
	}
	if got := len(list.Snapshot().Items); got != 4 {
		t.Errorf("items = %d, want 4", got)
	}
}
