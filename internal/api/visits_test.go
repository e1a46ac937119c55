package api

import "testing"

func TestFeedbackQuestions(t *testing.T) {
	if len(feedbackQuestions) != 5 {
		t.Fatalf("expected 5 feedback questions, got %d", len(feedbackQuestions))
	}

	ids := map[string]bool{}
	for _, q := range feedbackQuestions {
		id, _ := q["id"].(string)
		if id == "" {
			t.Fatalf("question missing id: %+v", q)
		}
		ids[id] = true
		if q["question_nepali"] == "" || q["question_english"] == "" {
			t.Errorf("question %s missing localized text", id)
		}
		if q["type"] != "boolean" {
			t.Errorf("question %s: unexpected type %v", id, q["type"])
		}
	}

	for _, want := range []string{"asked_for_bribe", "staff_helpful", "process_clear", "documents_sufficient", "would_recommend"} {
		if !ids[want] {
			t.Errorf("missing question %s", want)
		}
	}

	for _, q := range feedbackQuestions {
		critical, _ := q["critical"].(bool)
		if q["id"] == "asked_for_bribe" && !critical {
			t.Error("bribe question must be marked critical")
		}
		if q["id"] != "asked_for_bribe" && critical {
			t.Errorf("question %v unexpectedly critical", q["id"])
		}
	}
}

func TestWaitReasonOptions(t *testing.T) {
	if len(waitReasonOptions) != 8 {
		t.Fatalf("expected 8 wait reasons, got %d", len(waitReasonOptions))
	}
	seen := map[string]bool{}
	for _, r := range waitReasonOptions {
		if r["id"] == "" || r["nepali"] == "" || r["english"] == "" {
			t.Errorf("incomplete wait reason: %+v", r)
		}
		if seen[r["id"]] {
			t.Errorf("duplicate wait reason id %s", r["id"])
		}
		seen[r["id"]] = true
	}
	for _, want := range []string{"lunch_break", "system_down", "staff_absent", "long_queue", "document_issue", "payment_issue", "verification", "other"} {
		if !seen[want] {
			t.Errorf("missing wait reason %s", want)
		}
	}
}
