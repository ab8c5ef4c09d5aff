package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDeliver_SignsPayload(t *testing.T) {
	const secret = "wh-secret"

	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Shopcrawl-Signature")
		if ua := r.Header.Get("User-Agent"); ua != "Shopcrawl-Webhook/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := &Event{
		Type:      "crawl.completed",
		JobID:     "job-1",
		Platform:  "naver",
		Keyword:   "apple",
		Timestamp: time.Now().Unix(),
	}
	if err := Deliver(context.Background(), srv.URL, secret, event); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if !strings.HasPrefix(gotSig, "sha256=") {
		t.Fatalf("signature header = %q", gotSig)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var decoded Event
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if decoded.Type != "crawl.completed" || decoded.Platform != "naver" {
		t.Errorf("decoded event = %+v", decoded)
	}
}

func TestDeliver_NoSignatureWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig := r.Header.Get("X-Shopcrawl-Signature"); sig != "" {
			t.Errorf("unexpected signature header %q", sig)
		}
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", &Event{Type: "crawl.failed"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestDeliver_EndpointErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", &Event{Type: "crawl.completed"})
	if err == nil {
		t.Fatal("expected error for a 502 endpoint response")
	}
}
