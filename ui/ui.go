// Package ui draws the conversation screen and reads the user's replies.
package ui

import (
	"context"
	"errors"

	"node.town/speakwith/session"
)

// ErrQuit is returned by a LineReader when the user closed the interface.
var ErrQuit = errors.New("user quit")

// CustomPrompt is shown when the user asked to type their own reply.
const CustomPrompt = "Your response: "

type Renderer interface {
	Render(snapshot session.Snapshot) error
}

// LineReader returns one line of user input. A non-empty prompt is shown
// first. It returns io.EOF or ErrQuit once no more input will come.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}
