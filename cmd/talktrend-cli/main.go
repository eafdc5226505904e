package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kotonoha/talktrend/pkg/talktrend"
	"github.com/kotonoha/talktrend/pkg/talktrend/config"
	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/morph"
	"github.com/kotonoha/talktrend/pkg/talktrend/parse"
	"github.com/kotonoha/talktrend/pkg/talktrend/store"
	"github.com/kotonoha/talktrend/pkg/talktrend/store/sqlite"
)

func main() {
	var (
		input       = flag.String("input", "", "Path to LINE talk-history export (required unless -list-imports)")
		stopwords   = flag.String("stopwords", "", "Optional stopword YAML file")
		topN        = flag.Int("top", 50, "Number of top entries per ranking")
		minWordLen  = flag.Int("min-word-length", 2, "Minimum word length in characters")
		maxWordLen  = flag.Int("max-word-length", 0, "Maximum word length (0 = unlimited)")
		minMsgLen   = flag.Int("min-message-length", 2, "Minimum message length for ranking")
		maxMsgLen   = flag.Int("max-message-length", 0, "Maximum message length (0 = unlimited)")
		minMsgCount = flag.Int("min-message-count", 2, "Minimum occurrences for a message to rank")
		exclude     = flag.String("exclude", "", "Comma-separated part-of-speech classes to exclude")
		partial     = flag.Bool("partial", false, "Also count partial (substring) message matches")
		perAuthor   = flag.Bool("per-author", false, "Include per-author rankings")
		from        = flag.String("from", "", "Period start (YYYY-MM-DD)")
		to          = flag.String("to", "", "Period end (YYYY-MM-DD)")
		archive     = flag.String("archive", "", "SQLite archive path; parsed messages are saved there")
		listImports = flag.Bool("list-imports", false, "List archived imports and exit (requires -archive)")
		reanalyze   = flag.String("reanalyze", "", "Re-analyze an archived import by ID instead of reading -input (requires -archive)")
	)
	flag.Parse()

	ctx := context.Background()

	if *listImports {
		if *archive == "" {
			log.Fatal("-archive required with -list-imports")
		}
		st, err := sqlite.Open(ctx, *archive)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer st.Close()
		imports, err := st.ListImports(ctx)
		if err != nil {
			log.Fatalf("list imports: %v", err)
		}
		for _, imp := range imports {
			fmt.Printf("%s  %s  %d messages  %s\n",
				imp.ID, imp.CreatedAt.Format(time.RFC3339), imp.MessageCount, imp.Name)
		}
		return
	}

	var stops []string
	if *stopwords != "" {
		stops = config.LoadStopwords(*stopwords)
	}

	engine, err := morph.NewKagomeEngine()
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}

	var raw string
	if *reanalyze != "" {
		if *archive == "" {
			log.Fatal("-archive required with -reanalyze")
		}
		raw, err = exportFromArchive(ctx, *archive, *reanalyze)
		if err != nil {
			log.Fatalf("load import: %v", err)
		}
	} else {
		if *input == "" {
			log.Fatal("-input required")
		}
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("read input: %v", err)
		}
		raw = string(data)
	}

	analyzer, err := talktrend.New(talktrend.Config{Engine: engine, Stopwords: stops})
	if err != nil {
		log.Fatalf("analyzer init: %v", err)
	}

	opts := talktrend.Options{
		TopN:             *topN,
		MinWordLength:    *minWordLen,
		MaxWordLength:    *maxWordLen,
		MinMessageLength: *minMsgLen,
		MaxMessageLength: *maxMsgLen,
		MinMessageCount:  *minMsgCount,
		PerAuthor:        *perAuthor,
	}
	if *partial {
		opts.CountMode = count.ModeExactAndPartial
	}
	if *exclude != "" {
		for _, p := range strings.Split(*exclude, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opts.ExcludePOS = append(opts.ExcludePOS, p)
			}
		}
	}
	if opts.PeriodStart, err = parseDate(*from); err != nil {
		log.Fatalf("-from: %v", err)
	}
	if opts.PeriodEnd, err = parseDate(*to); err != nil {
		log.Fatalf("-to: %v", err)
	}

	rep, err := analyzer.Analyze(raw, opts)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	if *archive != "" && *reanalyze == "" {
		if err := archiveMessages(ctx, *archive, *input, raw, engine, stops); err != nil {
			log.Fatalf("archive: %v", err)
		}
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	fmt.Println(string(out))
}

var weekdayGlyphs = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// exportFromArchive synthesizes an export text from an archived import so
// the regular pipeline can re-analyze it with current options.
func exportFromArchive(ctx context.Context, path, id string) (string, error) {
	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	imp, messages, err := st.GetImport(ctx, id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[LINE] %s\n", imp.Name)
	fmt.Fprintf(&b, "保存日時：%s\n", imp.CreatedAt.Format("2006/01/02 15:04"))

	var day time.Time
	for _, m := range messages {
		d := time.Date(m.Timestamp.Year(), m.Timestamp.Month(), m.Timestamp.Day(),
			0, 0, 0, 0, m.Timestamp.Location())
		if !d.Equal(day) {
			day = d
			fmt.Fprintf(&b, "%d/%d/%d(%s)\n",
				d.Year(), int(d.Month()), d.Day(), weekdayGlyphs[d.Weekday()])
		}
		text := m.Text
		if strings.Contains(text, "\n") {
			text = `"` + text + `"`
		}
		fmt.Fprintf(&b, "%d:%02d\t%s\t%s\n",
			m.Timestamp.Hour(), m.Timestamp.Minute(), m.Author, text)
	}
	return b.String(), nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

// archiveMessages re-parses the export and stores messages with their
// extracted tokens in the SQLite archive.
func archiveMessages(ctx context.Context, path, name, raw string, engine morph.Engine, stops []string) error {
	messages, err := parse.NewParser().Parse(raw)
	if err != nil {
		return err
	}

	analyzer := morph.NewAnalyzer(engine, morph.Config{Stopwords: stops})
	archived := make([]store.ArchivedMessage, 0, len(messages))
	for _, m := range messages {
		tokens, err := analyzer.Analyze(m.Text)
		if err != nil {
			return err
		}
		surfaces := make([]string, 0, len(tokens))
		for _, t := range tokens {
			surfaces = append(surfaces, t.Surface)
		}
		archived = append(archived, store.ArchivedMessage{
			Timestamp: m.Timestamp,
			Author:    m.Author,
			Text:      m.Text,
			Tokens:    surfaces,
		})
	}

	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	imp, err := st.SaveImport(ctx, name, archived)
	if err != nil {
		return err
	}
	log.Printf("archived %d messages as import %s", imp.MessageCount, imp.ID)
	return nil
}
