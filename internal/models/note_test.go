package models

import (
	"errors"
	"testing"

	"github.com/starford/lifenote/internal/apperr"
)

func TestResolveTopic(t *testing.T) {
	cases := []struct {
		in      Topic
		want    Topic
		wantErr bool
	}{
		{"", TopicDiary, false},
		{"  ", TopicDiary, false},
		{TopicHealth, TopicHealth, false},
		{TopicLearning, TopicLearning, false},
		{"gardening", "", true},
	}
	for _, c := range cases {
		got, err := ResolveTopic(c.in)
		if c.wantErr {
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("ResolveTopic(%q) err = %v, want validation error", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveTopic(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ResolveTopic(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	if err := (Draft{Content: "Went for a run", Topic: TopicHealth}).Validate(); err != nil {
		t.Fatalf("valid draft: %v", err)
	}
	if err := (Draft{Content: "no topic"}).Validate(); err != nil {
		t.Fatalf("draft without topic: %v", err)
	}
	for _, content := range []string{"", "   ", "\n\t"} {
		err := Draft{Content: content}.Validate()
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) || ve.Field != "content" {
			t.Errorf("content %q: err = %v, want content validation error", content, err)
		}
	}
	if err := (Draft{Content: "x", Topic: "bogus"}).Validate(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown topic: err = %v", err)
	}
}

func TestTopicEmojiFallback(t *testing.T) {
	if TopicDev.Emoji() != "👩‍💻" {
		t.Errorf("dev emoji = %q", TopicDev.Emoji())
	}
	if Topic("unknown").Emoji() != TopicDiary.Emoji() {
		t.Error("unknown topic should fall back to diary emoji")
	}
}
