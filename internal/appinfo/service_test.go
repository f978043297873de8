package appinfo

import (
	"context"
	"testing"

	"github.com/hitoshi/giftdesk/internal/apiclient/apiclienttest"
)

func TestService_Endpoints(t *testing.T) {
	api := apiclienttest.New().
		Respond(pathCountries, []map[string]any{{"code": "NG", "name": "Nigeria"}}).
		Respond(pathAppConfig, map[string]any{"latestVersion": "2.0.0"}).
		Respond(pathTrackFirstOpen, nil)
	svc := NewService(api)
	ctx := context.Background()
	info := ClientInfo{Version: "1.0.0", Platform: "ios"}

	countries, err := svc.Countries(ctx)
	if err != nil || len(countries) != 1 || countries[0].Name != "Nigeria" {
		t.Fatalf("Countries = %+v, %v", countries, err)
	}

	cfg, err := svc.AppConfig(ctx, info)
	if err != nil || cfg.LatestVersion != "2.0.0" {
		t.Fatalf("AppConfig = %+v, %v", cfg, err)
	}
	if body := api.LastBody(); body["version"] != "1.0.0" || body["platform"] != "ios" {
		t.Errorf("app-config body = %v", body)
	}

	if err := svc.TrackFirstOpen(ctx, "dev-1", info); err != nil {
		t.Fatalf("TrackFirstOpen がエラーを返した: %v", err)
	}
	if body := api.LastBody(); body["deviceId"] != "dev-1" || body["platform"] != "ios" {
		t.Errorf("first-open body = %v", body)
	}
}
