package identity

import (
	"github.com/botarmy/switchboard/pkg/domain"
)

func (f *Flow) reasonMenu(mode domain.RenderMode) domain.Render {
	b := f.content.Buttons
	return domain.Render{
		Mode: mode,
		Text: f.content.Texts.ReasonPrompt,
		Options: [][]domain.Option{
			{{Label: b.General, Value: General}, {Label: b.Emergency, Value: Emergency}},
			{{Label: b.Exit, Value: End}},
		},
	}
}

func (f *Flow) actionMenu(mode domain.RenderMode) domain.Render {
	b := f.content.Buttons
	return domain.Render{
		Mode: mode,
		Text: f.content.Texts.ActionPrompt,
		Options: [][]domain.Option{
			{{Label: b.StartCapture, Value: StartCapture}},
			{{Label: b.Show, Value: Show}, {Label: b.GoBack, Value: End}},
		},
	}
}

func (f *Flow) summary(s *domain.Session) domain.Render {
	level := s.Level
	if level == "" {
		level = f.content.Bot.Subject
	}
	view := *s
	view.Level = level
	return domain.Render{
		Mode:    domain.ModeReplace,
		Text:    f.collector.Summary(&view),
		Options: [][]domain.Option{{{Label: f.content.Buttons.Back, Value: End}}},
	}
}

func (f *Flow) goodbye(mode domain.RenderMode) domain.Render {
	return domain.Render{Mode: mode, Text: f.content.Texts.Goodbye}
}
