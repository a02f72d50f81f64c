// Command ask answers one farming question from the command line and
// prints the result as JSON.
//
//	ask "how much urea for maize"
//	echo "tomato blight" | ask -
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/advisor"
	"github.com/garyellow/agri-advisor-go/internal/app"
	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/logger"
)

var (
	strategyFlag = flag.String("strategy", "", "Override AGRI_CLASSIFIER_STRATEGY (zeroshot, finetuned, lexical)")
	rankingFlag  = flag.Bool("ranking", false, "Include the full intent ranking")
)

type output struct {
	advisor.Result
	Ranking []intent.Score `json:"ranking,omitempty"`
}

func main() {
	flag.Parse()

	if err := run(context.Background(), flag.Args(), os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ask: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	text, err := questionFrom(args, stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *strategyFlag != "" {
		cfg.Classifier.Strategy = strings.ToLower(*strategyFlag)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := logger.NewWithWriter(cfg.LogLevel, os.Stderr)
	p, err := app.NewPipeline(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	initCtx, cancel := context.WithTimeout(ctx, cfg.Classifier.InitTimeout)
	defer cancel()
	if err := p.Classifier.Init(initCtx); err != nil {
		log.WithError(err).Warn("Classifier unavailable; answers fall back to the generic reply")
	}

	res, err := p.Advisor.ProcessQuery(ctx, text)
	if err != nil {
		return err
	}
	return write(stdout, res, *rankingFlag)
}

// questionFrom joins argv, or reads stdin when the only argument is "-".
func questionFrom(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		var sb strings.Builder
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			sb.WriteString(sc.Text())
			sb.WriteByte(' ')
		}
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		args = []string{sb.String()}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", errors.New("no question given")
	}
	return text, nil
}

func write(w io.Writer, res advisor.Result, withRanking bool) error {
	out := output{Result: res}
	if withRanking {
		out.Ranking = res.Ranking
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
