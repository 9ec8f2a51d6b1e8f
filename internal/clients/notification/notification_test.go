package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

func TestHTTPSender_PostsEmailRequest(t *testing.T) {
	var got emailRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSender(logger.Nop(), srv.URL+"/", time.Second, 0)
	if err := s.SendEmail(context.Background(), " a@b.test ", "New Task Unlocked", "hello"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if path != "/api/notifications/send" {
		t.Fatalf("path: want=/api/notifications/send got=%s", path)
	}
	if got.Recipient != "a@b.test" || got.Subject != "New Task Unlocked" || got.Body != "hello" {
		t.Fatalf("payload: got=%+v", got)
	}
}

func TestNew_Providers(t *testing.T) {
	if _, err := New(logger.Nop(), Config{Provider: "http"}); err == nil {
		t.Fatalf("http provider without url should fail")
	}
	if _, err := New(logger.Nop(), Config{Provider: "pigeon"}); err == nil {
		t.Fatalf("unknown provider should fail")
	}
	s, err := New(logger.Nop(), Config{Provider: "log"})
	if err != nil {
		t.Fatalf("log provider: %v", err)
	}
	if err := s.SendEmail(context.Background(), "a@b", "s", "b"); err != nil {
		t.Fatalf("log send: %v", err)
	}
}

func TestTemplates_RenderAll(t *testing.T) {
	tpl, err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	data := TemplateData{StudentName: "Asha", TaskTitle: "REST APIs", WeekNo: 2, Deadline: "2025-01-12", Days: 5, ReminderEveryDays: 3}
	kinds := map[TemplateKind]string{
		TemplateTaskUnlocked:      "New Task Unlocked",
		TemplateTaskDelayed:       "Task Deadline Missed",
		TemplateOverdueReminder:   "Task Overdue - Please Submit Immediately",
		TemplateExtensionApproved: "Extension Request Approved",
		TemplateExtensionRejected: "Extension Request Rejected",
	}
	for kind, wantSubject := range kinds {
		subject, body, err := tpl.Render(kind, data)
		if err != nil {
			t.Fatalf("Render(%s): %v", kind, err)
		}
		if subject != wantSubject {
			t.Fatalf("Render(%s) subject: want=%q got=%q", kind, wantSubject, subject)
		}
		if !strings.Contains(body, "REST APIs") || !strings.HasPrefix(body, "Hi Asha") && !strings.HasPrefix(body, "Dear Asha") {
			t.Fatalf("Render(%s) body: got=%q", kind, body)
		}
	}
	if _, _, err := tpl.Render("nope", data); err == nil {
		t.Fatalf("unknown template should fail")
	}
}

func TestTemplates_DefaultName(t *testing.T) {
	tpl, err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	_, body, err := tpl.Render(TemplateTaskDelayed, TemplateData{TaskTitle: "x"})
	if err != nil || !strings.HasPrefix(body, "Hi Student,") {
		t.Fatalf("default name: body=%q err=%v", body, err)
	}
}
