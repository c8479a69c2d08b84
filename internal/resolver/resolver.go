package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrEmptyQuestion is returned when the question is empty after
// trimming. The HTTP layer validates first; this is the backstop.
var ErrEmptyQuestion = errors.New("question is empty")

// FallbackAnswer is returned when neither the AI provider nor the
// dataset can answer.
const FallbackAnswer = "ဝမ်းနည်းပါတယ်။ လောလောဆယ် သင့်မေးခွန်းအတွက် တိကျသော အဖြေ မပေးနိုင်ပါ။ ကျေးဇူးပြု၍ သင့်မေးခွန်းကို ပိုမို တိကျစွာ မေးကြည့်ပါ သို့မဟုတ် ဥပဒေကြံ့ခိုင်မှုနှင့် တိုင်ပင်ပါ။"

// ErrorAnswer is returned when the pipeline itself failed unexpectedly.
const ErrorAnswer = "စနစ်အမှားဖြစ်ပွားနေပါသည်။ ကျေးဇူးပြု၍ ခဏစောင့်ပြီး ပြန်လည်ကြိုးစားပါ။"

type Result struct {
	Answer string
	Source string
}

// AIClient is the outbound completion call. Implemented by
// internal/gemini; stubbed in tests.
type AIClient interface {
	Complete(ctx context.Context, question string) (string, error)
}

// Lookup is the dataset side of the pipeline, implemented by
// internal/dataset.
type Lookup interface {
	Lookup(question string) (string, bool)
}

type Resolver struct {
	ai        AIClient
	dataset   Lookup
	aiTimeout time.Duration
	log       *logrus.Entry
}

func New(logger *logrus.Logger, ai AIClient, dataset Lookup, aiTimeout time.Duration) *Resolver {
	return &Resolver{
		ai:        ai,
		dataset:   dataset,
		aiTimeout: aiTimeout,
		log:       logger.WithField("component", "resolver"),
	}
}

// Resolve runs the fallback chain: AI provider, then dataset, then the
// fixed fallback text. The first source that succeeds wins and tags the
// result. Every AI failure is non-fatal; a panic anywhere in the chain
// is recovered and tagged as an error result so the caller always gets
// a well-formed answer.
func (r *Resolver) Resolve(ctx context.Context, question string) (result Result, err error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Error("Resolution pipeline panicked")
			result = Result{Answer: ErrorAnswer, Source: models.SourceError}
			err = nil
		}
	}()

	aiCtx, cancel := context.WithTimeout(ctx, r.aiTimeout)
	defer cancel()

	answer, aiErr := r.ai.Complete(aiCtx, question)
	if aiErr == nil {
		return Result{Answer: answer, Source: models.SourceAI}, nil
	}
	r.log.WithError(aiErr).Debug("AI provider unavailable, trying dataset")

	if answer, ok := r.dataset.Lookup(question); ok {
		return Result{Answer: answer, Source: models.SourceDataset}, nil
	}

	return Result{Answer: FallbackAnswer, Source: models.SourceFallback}, nil
}
