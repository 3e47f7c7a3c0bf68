package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otpgate/otpgate/internal/config"
)

func newTestTwilioNotifier(baseURL string) *TwilioNotifier {
	n := NewTwilioNotifier(config.TwilioConfig{
		AccountSID: "AC_test",
		AuthToken:  "secret",
		FromNumber: "+15550009999",
	})
	n.baseURL = baseURL
	return n
}

func TestTwilioNotifierSend(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := newTestTwilioNotifier(srv.URL)
	err := n.Send(context.Background(), Message{
		Kind:        KindPhoneOTP,
		Destination: "+15550001111",
		Body:        "Your OTP is 123456",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/Accounts/AC_test/Messages.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "AC_test" || gotPass != "secret" {
		t.Fatalf("unexpected basic auth %q:%q", gotUser, gotPass)
	}
	if gotTo != "+15550001111" || gotFrom != "+15550009999" {
		t.Fatalf("unexpected to/from %q/%q", gotTo, gotFrom)
	}
	if gotBody != "Your OTP is 123456" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestTwilioNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code": 20003}`))
	}))
	defer srv.Close()

	n := newTestTwilioNotifier(srv.URL)
	err := n.Send(context.Background(), Message{Destination: "+15550001111", Body: "x"})
	if err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}
