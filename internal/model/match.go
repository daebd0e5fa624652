package model

import "time"

//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

// MatchKind describes how a post qualified for notification
// ENUM(keyword,flair)
type MatchKind string

// Match is a post that qualified for notification, plus evaluation metadata.
type Match struct {
	Post        Post      `json:"post"`
	Keywords    []string  `json:"matched_keywords"`
	Kind        MatchKind `json:"match_kind"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
