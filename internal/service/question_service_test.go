package service

import (
	"testing"

	"github.com/btesedu/scholarex-backend/internal/model"
)

func TestImportItemValidation(t *testing.T) {
	valid := model.QuestionImportItem{
		Category:      "tech",
		QuestionText:  "What does TCP stand for?",
		Option1:       "Transmission Control Protocol",
		Option2:       "Transfer Code Protocol",
		Option3:       "  ",
		Option4:       "Tunnel Control Path",
		CorrectOption: 1,
	}

	q, ok := importItemToQuestion(valid)
	if !ok {
		t.Fatal("valid item rejected")
	}
	if q.Category != model.CategoryTechnical {
		t.Fatalf("category not normalized: %s", q.Category)
	}
	if q.Option3 != nil {
		t.Fatal("blank option 3 must become nil")
	}
	if q.Option4 == nil || *q.Option4 != "Tunnel Control Path" {
		t.Fatal("option 4 dropped")
	}
	if !q.IsActive {
		t.Fatal("imported questions start active")
	}

	bad := []model.QuestionImportItem{
		{Category: "HIST", QuestionText: "q", Option1: "a", Option2: "b", CorrectOption: 1},
		{Category: "TECH", QuestionText: "   ", Option1: "a", Option2: "b", CorrectOption: 1},
		{Category: "TECH", QuestionText: "q", Option1: "", Option2: "b", CorrectOption: 1},
		{Category: "TECH", QuestionText: "q", Option1: "a", Option2: "b", CorrectOption: 0},
		{Category: "TECH", QuestionText: "q", Option1: "a", Option2: "b", CorrectOption: 5},
	}
	for i, item := range bad {
		if _, ok := importItemToQuestion(item); ok {
			t.Errorf("invalid item %d accepted: %+v", i, item)
		}
	}
}
