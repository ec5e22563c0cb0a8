// Package advisor runs the course-advising interview.
//
// # Overview
//
// A [Session] asks a fixed list of questions ([Questions] by default), one
// at a time. After the last answer it sends the whole conversation to a
// [Recommender] and extracts the course codes in the reply with
// [ExtractCourseIDs]. Those codes become the diagram's selection. Later
// messages are follow-ups: each is sent with the full conversation and may
// replace the selection.
//
// # Usage
//
//	s := advisor.NewSession(client, advisor.WithSelectionHandler(func(ids []string) {
//	    view.SetSelection(catalog.NewSelection(ids...))
//	}))
//	fmt.Println(s.Question())
//	reply, err := s.Submit(ctx, "I want to run a fintech startup")
//
// A failed recommendation does not end the session: the reply is [Apology],
// [Reply.Err] holds the cause, and the next message retries as a follow-up.
package advisor
