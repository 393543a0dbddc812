package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/models"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _, prompt string, _ float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const frenchReply = `{"name":"John Doe","bio":"Ingénieur backend","skills":"Go, SQL","projects":"Plateforme CV","contacts":"john@example.com"}`

func sampleCV() *models.CV {
	return &models.CV{
		ID:        42,
		Firstname: "John",
		Lastname:  "Doe",
		Bio:       "Backend engineer",
		Skills:    "Go, SQL",
		Projects:  "CV platform",
		Contacts:  "john@example.com",
	}
}

func newTranslator(gen TextGenerator) TranslationService {
	return NewTranslationService(gen, NewTranslationCache(time.Hour), zap.NewNop())
}

func TestTranslate_CachesSuccessfulResult(t *testing.T) {
	gen := &fakeGenerator{reply: frenchReply}
	svc := newTranslator(gen)
	cv := sampleCV()

	first, err := svc.Translate(context.Background(), cv, "french")
	require.NoError(t, err)
	assert.True(t, first.Translated)
	assert.Equal(t, "French", first.Language)
	assert.Equal(t, "English", first.OriginalLanguage)
	assert.Equal(t, "Ingénieur backend", first.Bio)

	second, err := svc.Translate(context.Background(), cv, "french")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.callCount())

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "into French")
	assert.Contains(t, gen.prompts[0], "Name: John Doe")
}

func TestTranslate_CacheIsPerLanguageAndCV(t *testing.T) {
	gen := &fakeGenerator{reply: frenchReply}
	svc := newTranslator(gen)
	cv := sampleCV()

	_, err := svc.Translate(context.Background(), cv, "french")
	require.NoError(t, err)
	_, err = svc.Translate(context.Background(), cv, "german")
	require.NoError(t, err)

	other := sampleCV()
	other.ID = 43
	_, err = svc.Translate(context.Background(), other, "french")
	require.NoError(t, err)

	assert.Equal(t, 3, gen.callCount())
}

func TestTranslate_InvalidateDropsCachedEntries(t *testing.T) {
	gen := &fakeGenerator{reply: frenchReply}
	svc := newTranslator(gen)
	cv := sampleCV()

	_, err := svc.Translate(context.Background(), cv, "breton")
	require.NoError(t, err)
	svc.Invalidate(cv.ID)
	_, err = svc.Translate(context.Background(), cv, "breton")
	require.NoError(t, err)

	assert.Equal(t, 2, gen.callCount())
}

func TestTranslate_UnsupportedLanguage(t *testing.T) {
	for _, gen := range []TextGenerator{nil, &fakeGenerator{reply: frenchReply}} {
		svc := newTranslator(gen)

		result, err := svc.Translate(context.Background(), sampleCV(), "klingon")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
		assert.False(t, result.Translated)
		assert.Contains(t, result.Error, "not supported")
	}
}

func TestTranslate_NotConfigured(t *testing.T) {
	svc := newTranslator(nil)

	result, err := svc.Translate(context.Background(), sampleCV(), "french")
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.False(t, result.Translated)
	assert.False(t, svc.Configured())
}

func TestTranslate_ParseFailureIsNotCached(t *testing.T) {
	gen := &fakeGenerator{reply: "Désolé, je ne peux pas"}
	svc := newTranslator(gen)

	result, err := svc.Translate(context.Background(), sampleCV(), "french")
	assert.True(t, errors.Is(err, ErrTranslationParse))
	assert.False(t, result.Translated)
	assert.Equal(t, "Désolé, je ne peux pas", result.RawResponse)

	_, _ = svc.Translate(context.Background(), sampleCV(), "french")
	assert.Equal(t, 2, gen.callCount())
}

func TestTranslate_APIErrorIsNotCached(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := newTranslator(gen)

	result, err := svc.Translate(context.Background(), sampleCV(), "japanese")
	assert.True(t, errors.Is(err, ErrTranslationFailed))
	assert.False(t, result.Translated)
	assert.Contains(t, result.Error, "quota exceeded")

	_, _ = svc.Translate(context.Background(), sampleCV(), "japanese")
	assert.Equal(t, 2, gen.callCount())
}

func TestTranslate_AcceptsFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + frenchReply + "\n```"}
	svc := newTranslator(gen)

	result, err := svc.Translate(context.Background(), sampleCV(), "french")
	require.NoError(t, err)
	assert.True(t, result.Translated)
	assert.Equal(t, "Plateforme CV", result.Projects)
}

func TestTranslate_AcceptsNonStringValues(t *testing.T) {
	gen := &fakeGenerator{reply: `{"name":"Jean","bio":"Ingénieur","skills":["Go","SQL"],"projects":"P","contacts":"c","years":12,"notes":{"tone":"formel"}}`}
	svc := newTranslator(gen)

	result, err := svc.Translate(context.Background(), sampleCV(), "french")
	require.NoError(t, err)
	assert.True(t, result.Translated)
	assert.Equal(t, "Jean", result.Name)
	assert.Equal(t, "Go, SQL", result.Skills)
	assert.Equal(t, "French", result.Language)
	assert.Equal(t, 12.0, result.Extra["years"])
	assert.Equal(t, map[string]interface{}{"tone": "formel"}, result.Extra["notes"])
	assert.NotContains(t, result.Extra, "skills")

	cached, err := svc.Translate(context.Background(), sampleCV(), "french")
	require.NoError(t, err)
	assert.Equal(t, "Go, SQL", cached.Skills)
	assert.Equal(t, 1, gen.callCount())
}

func TestTranslate_NonObjectReplyIsAParseFailure(t *testing.T) {
	for _, reply := range []string{`["Jean", "Ingénieur"]`, `null`, `{"name": "Jean"`} {
		t.Run(reply, func(t *testing.T) {
			svc := newTranslator(&fakeGenerator{reply: reply})

			result, err := svc.Translate(context.Background(), sampleCV(), "french")
			assert.True(t, errors.Is(err, ErrTranslationParse))
			assert.False(t, result.Translated)
			assert.Equal(t, reply, result.RawResponse)
		})
	}
}

func TestReplyText(t *testing.T) {
	assert.Equal(t, "", replyText(nil))
	assert.Equal(t, "Go", replyText("Go"))
	assert.Equal(t, "Go, SQL", replyText([]interface{}{"Go", "", "SQL"}))
	assert.Equal(t, "3", replyText(3.0))
	assert.Equal(t, "true", replyText(true))
	assert.Equal(t, `{"a":"b"}`, replyText(map[string]interface{}{"a": "b"}))
}

func TestTranslationCache_Expires(t *testing.T) {
	cache := NewTranslationCache(20 * time.Millisecond)
	cache.Set(1, "french", TranslationResult{Translated: true})

	_, ok := cache.Get(1, "french")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = cache.Get(1, "french")
	assert.False(t, ok)
}

func TestLanguageCatalog(t *testing.T) {
	catalog := LanguageCatalog()

	assert.Len(t, catalog["required"], 17)
	assert.Len(t, catalog["popular"], 10)
	assert.Len(t, catalog["all"], 27)
	assert.Equal(t, "Northern Sami", catalog["required"]["northern_sami"])
	assert.Equal(t, "Portuguese (Brazil)", catalog["all"]["portuguese_brazil"])

	name, ok := LanguageName("upper_sorbian")
	assert.True(t, ok)
	assert.Equal(t, "Upper Sorbian", name)
}
