package degreed

import (
	"context"
	"net/http"
	"testing"

	"github.com/eh7/edx-enterprise/internal/testutil"
	"github.com/eh7/edx-enterprise/transmission"
)

func testCustomerConfiguration(provider *testutil.MockProvider) *CustomerConfiguration {
	return &CustomerConfiguration{
		CustomerUUID:         "customer-uuid",
		CustomerName:         "Test Shib",
		Enabled:              true,
		RealTimeTransmission: true,
		Provider:             testProviderConfig(provider.BaseURL),
		ClientOptions:        []Option{WithBaseTransport(provider)},
	}
}

func TestCustomerConfiguration_Accessors(t *testing.T) {
	cfg := testCustomerConfiguration(testutil.NewMockProvider(t))

	if got := cfg.String(); got != "<DegreedEnterpriseCustomerConfiguration for Enterprise Test Shib>" {
		t.Errorf("unexpected String(): %s", got)
	}
	if cfg.ChannelCode() != "degreed" || !cfg.Active() || !cfg.RealTimeLearnerTransmission() {
		t.Errorf("unexpected accessors: %+v", cfg)
	}

	exporter, ok := cfg.LearnerDataExporter(transmission.UserAgent).(*LearnerExporter)
	if !ok {
		t.Fatal("expected *LearnerExporter")
	}
	if exporter.orgCode != "company_id" || exporter.UserAgent() != transmission.UserAgent {
		t.Errorf("unexpected exporter: %+v", exporter)
	}
}

func TestCustomerConfiguration_TransmittersOwnTheirTokens(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	withTokenEndpoint(provider, 1800)
	provider.HandleJSON(http.MethodPost, completionPath, http.StatusOK, `"{}"`)

	cfg := testCustomerConfiguration(provider)
	exporter := cfg.LearnerDataExporter(transmission.UserAgent)

	for i := 0; i < 2; i++ {
		transmitter, err := cfg.LearnerDataTransmitter()
		if err != nil {
			t.Fatalf("LearnerDataTransmitter failed: %v", err)
		}
		if err := transmitter.Transmit(context.Background(), exporter, testLearnerTransmission(true)); err != nil {
			t.Fatalf("Transmit failed: %v", err)
		}
	}

	if n := provider.CountCalls(http.MethodPost, oauthPath); n != 2 {
		t.Errorf("expected each transmitter to fetch its own token, got %d fetches", n)
	}
}

func TestCustomerConfiguration_InvalidProvider(t *testing.T) {
	cfg := &CustomerConfiguration{CustomerName: "Broken"}

	if _, err := cfg.LearnerDataTransmitter(); err == nil {
		t.Fatal("expected error for invalid provider settings")
	}
}
