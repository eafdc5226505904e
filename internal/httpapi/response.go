package httpapi

import (
	"time"

	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/parse"
	"github.com/kotonoha/talktrend/pkg/talktrend/report"
)

// Response envelope returned by the analyze endpoint.
type analysisResponse struct {
	Status string       `json:"status"`
	Data   analysisData `json:"data"`
}

type analysisData struct {
	AnalysisPeriod        periodJSON       `json:"analysis_period"`
	TotalMessages         int              `json:"total_messages"`
	TotalUsers            int              `json:"total_users"`
	MorphologicalAnalysis wordAnalysisJSON `json:"morphological_analysis"`
	FullMessageAnalysis   msgAnalysisJSON  `json:"full_message_analysis"`
	UserAnalysis          *userAnalysis    `json:"user_analysis,omitempty"`
}

type periodJSON struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type wordAnalysisJSON struct {
	TopWords []topWordJSON `json:"top_words"`
}

type topWordJSON struct {
	Word         string           `json:"word"`
	Count        int              `json:"count"`
	PartOfSpeech string           `json:"part_of_speech"`
	Appearances  []appearanceJSON `json:"appearances"`
}

type msgAnalysisJSON struct {
	TopMessages []topMessageJSON `json:"top_messages"`
}

type topMessageJSON struct {
	Message     string           `json:"message"`
	Count       int              `json:"count"`
	Appearances []appearanceJSON `json:"appearances"`
}

type appearanceJSON struct {
	Date    time.Time `json:"date"`
	User    string    `json:"user"`
	Message string    `json:"message"`
}

type userAnalysis struct {
	WordAnalysis    []userWordsJSON    `json:"word_analysis"`
	MessageAnalysis []userMessagesJSON `json:"message_analysis"`
}

type userWordsJSON struct {
	User     string        `json:"user"`
	TopWords []topWordJSON `json:"top_words"`
}

type userMessagesJSON struct {
	User        string           `json:"user"`
	TopMessages []topMessageJSON `json:"top_messages"`
}

type errorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func toResponse(r *report.Report) analysisResponse {
	data := analysisData{
		AnalysisPeriod: periodJSON{
			StartDate: r.Period.Start.Format(time.DateOnly),
			EndDate:   r.Period.End.Format(time.DateOnly),
		},
		TotalMessages: r.TotalMessages,
		TotalUsers:    r.TotalAuthors,
		MorphologicalAnalysis: wordAnalysisJSON{
			TopWords: toTopWords(r.TopWords),
		},
		FullMessageAnalysis: msgAnalysisJSON{
			TopMessages: toTopMessages(r.TopMessages),
		},
	}

	if r.AuthorWords != nil || r.AuthorMessages != nil {
		ua := &userAnalysis{
			WordAnalysis:    []userWordsJSON{},
			MessageAnalysis: []userMessagesJSON{},
		}
		for _, aw := range r.AuthorWords {
			ua.WordAnalysis = append(ua.WordAnalysis, userWordsJSON{
				User:     aw.Author,
				TopWords: toTopWords(aw.Words),
			})
		}
		for _, am := range r.AuthorMessages {
			ua.MessageAnalysis = append(ua.MessageAnalysis, userMessagesJSON{
				User:        am.Author,
				TopMessages: toTopMessages(am.Messages),
			})
		}
		data.UserAnalysis = ua
	}

	return analysisResponse{Status: "success", Data: data}
}

func toTopWords(words []count.WordCount) []topWordJSON {
	out := make([]topWordJSON, 0, len(words))
	for _, w := range words {
		out = append(out, topWordJSON{
			Word:         w.Word,
			Count:        w.Count,
			PartOfSpeech: w.POS,
			Appearances:  toAppearances(w.Appearances),
		})
	}
	return out
}

func toTopMessages(msgs []count.MessageCount) []topMessageJSON {
	out := make([]topMessageJSON, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, topMessageJSON{
			Message:     m.Text,
			Count:       m.TotalCount,
			Appearances: toAppearances(m.ExactAppearances),
		})
	}
	return out
}

func toAppearances(messages []parse.Message) []appearanceJSON {
	out := make([]appearanceJSON, 0, len(messages))
	for _, m := range messages {
		out = append(out, appearanceJSON{
			Date:    m.Timestamp,
			User:    m.Author,
			Message: m.Text,
		})
	}
	return out
}
