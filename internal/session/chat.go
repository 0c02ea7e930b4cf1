// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Marker appended as the answer of a failed chat turn. The turn stays in
// the thread with Confidence "error" so the conversation log is complete.
const askFailed = "Failed to get response. Please try again."

// Ask sends a question about the displayed article at index i, grounded on
// the given context, and appends the resulting turn to that context's
// thread. The prior thread is replayed to the backend so follow-up
// questions stay coherent.
//
// The fulltext context requires the article's full text to have been
// fetched first. The grounding content is the abstract in both contexts;
// the context label still selects the backend's prompt framing and keeps
// the two threads separate.
func (s *Session) Ask(ctx context.Context, i int, chatContext types.ChatContext, question string) error {
	if chatContext != types.ContextAbstract && chatContext != types.ContextFullText {
		return fmt.Errorf("unknown chat context %q", chatContext)
	}

	a, gen, err := s.snapshotForEnrichment(i)
	if err != nil {
		return err
	}
	if chatContext == types.ContextFullText && a.FullText == nil {
		return fmt.Errorf("full text not fetched for %q: fetch it before asking in the fulltext context", a.Title)
	}

	history := a.Thread(chatContext)

	turn := types.ChatTurn{Question: question}
	answer, err := s.gw.AskAboutArticle(ctx, a.Abstract, question, string(chatContext), history)
	if err != nil {
		turn.Answer = askFailed
		turn.Confidence = "error"
	} else {
		turn.Answer = answer.Response
		turn.Confidence = answer.Confidence
	}

	return s.merge(gen, i, func(a *types.Article) {
		if a.Chats == nil {
			a.Chats = make(map[types.ChatContext][]types.ChatTurn)
		}
		a.Chats[chatContext] = append(a.Chats[chatContext], turn)
	})
}
