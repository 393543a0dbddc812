package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/metrics"
	"alfredoptarigan/cv-project/internal/models"
)

type Language struct {
	Key  string
	Name string
}

var requiredLanguages = []Language{
	{"cornish", "Cornish"},
	{"manx", "Manx"},
	{"breton", "Breton"},
	{"inuktitut", "Inuktitut"},
	{"kalaallisut", "Kalaallisut"},
	{"romani", "Romani"},
	{"occitan", "Occitan"},
	{"ladino", "Ladino"},
	{"northern_sami", "Northern Sami"},
	{"upper_sorbian", "Upper Sorbian"},
	{"kashubian", "Kashubian"},
	{"zazaki", "Zazaki"},
	{"chuvash", "Chuvash"},
	{"livonian", "Livonian"},
	{"tsakonian", "Tsakonian"},
	{"saramaccan", "Saramaccan"},
	{"bislama", "Bislama"},
}

var popularLanguages = []Language{
	{"french", "French"},
	{"german", "German"},
	{"spanish", "Spanish"},
	{"portuguese_brazil", "Portuguese (Brazil)"},
	{"italian", "Italian"},
	{"japanese", "Japanese"},
	{"chinese_simplified", "Chinese (Simplified)"},
	{"ukrainian", "Ukrainian"},
	{"korean", "Korean"},
	{"turkish", "Turkish"},
}

var languageNames = func() map[string]string {
	names := make(map[string]string, len(requiredLanguages)+len(popularLanguages))
	for _, l := range requiredLanguages {
		names[l.Key] = l.Name
	}
	for _, l := range popularLanguages {
		names[l.Key] = l.Name
	}
	return names
}()

// Languages returns every supported language, required ones first.
func Languages() []Language {
	all := make([]Language, 0, len(requiredLanguages)+len(popularLanguages))
	all = append(all, requiredLanguages...)
	return append(all, popularLanguages...)
}

func LanguageName(key string) (string, bool) {
	name, ok := languageNames[key]
	return name, ok
}

// LanguageCatalog groups language keys to display names by category.
func LanguageCatalog() map[string]map[string]string {
	toMap := func(langs []Language) map[string]string {
		m := make(map[string]string, len(langs))
		for _, l := range langs {
			m[l.Key] = l.Name
		}
		return m
	}
	return map[string]map[string]string{
		"required": toMap(requiredLanguages),
		"popular":  toMap(popularLanguages),
		"all":      toMap(Languages()),
	}
}

// TranslationResult is the structured outcome of one translation request.
// Translated is false on every failure path.
type TranslationResult struct {
	Translated       bool   `json:"translated"`
	Name             string `json:"name,omitempty"`
	Bio              string `json:"bio,omitempty"`
	Skills           string `json:"skills,omitempty"`
	Projects         string `json:"projects,omitempty"`
	Contacts         string `json:"contacts,omitempty"`
	Language         string `json:"language,omitempty"`
	OriginalLanguage string `json:"original_language,omitempty"`
	Error            string `json:"error,omitempty"`
	RawResponse      string `json:"raw_response,omitempty"`

	// Extra holds reply keys beyond the translated CV fields.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

var errReplyNotObject = errors.New("reply is not a JSON object")

var translatedFields = map[string]struct{}{
	"name": {}, "bio": {}, "skills": {}, "projects": {}, "contacts": {},
}

// replyText flattens one reply value to text. Lists are joined with ", ",
// the separator CV skills use.
func replyText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if text := replyText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

type TextGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, prompt string, temperature float32) (string, error)
}

type TranslationCache interface {
	Get(cvID uint, language string) (TranslationResult, bool)
	Set(cvID uint, language string, result TranslationResult)
	Invalidate(cvID uint)
}

type memoryTranslationCache struct {
	cache *gocache.Cache
}

func NewTranslationCache(ttl time.Duration) TranslationCache {
	return &memoryTranslationCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func translationCacheKey(cvID uint, language string) string {
	return fmt.Sprintf("cv_translation_%d_%s", cvID, language)
}

func (m *memoryTranslationCache) Get(cvID uint, language string) (TranslationResult, bool) {
	v, ok := m.cache.Get(translationCacheKey(cvID, language))
	if !ok {
		return TranslationResult{}, false
	}
	result, ok := v.(TranslationResult)
	return result, ok
}

func (m *memoryTranslationCache) Set(cvID uint, language string, result TranslationResult) {
	m.cache.SetDefault(translationCacheKey(cvID, language), result)
}

func (m *memoryTranslationCache) Invalidate(cvID uint) {
	for key := range languageNames {
		m.cache.Delete(translationCacheKey(cvID, key))
	}
}

type TranslationService interface {
	// Translate always returns a result. The error, when set, wraps one of
	// ErrUnsupportedLanguage, ErrNotConfigured, ErrTranslationParse or ErrTranslationFailed.
	Translate(ctx context.Context, cv *models.CV, language string) (*TranslationResult, error)
	Invalidate(cvID uint)
	Configured() bool
}

type translationService struct {
	generator     TextGenerator
	cache         TranslationCache
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

// NewTranslationService accepts a nil generator; every translation then fails with ErrNotConfigured.
func NewTranslationService(generator TextGenerator, cache TranslationCache, log *zap.Logger) TranslationService {
	return &translationService{
		generator:     generator,
		cache:         cache,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

func (s *translationService) Configured() bool {
	return s.generator != nil
}

func (s *translationService) Invalidate(cvID uint) {
	s.cache.Invalidate(cvID)
}

func (s *translationService) Translate(ctx context.Context, cv *models.CV, language string) (*TranslationResult, error) {
	languageName, ok := LanguageName(language)
	if !ok {
		metrics.TranslationsTotal.WithLabelValues("unsupported").Inc()
		return &TranslationResult{
			Error: fmt.Sprintf("Language %s not supported", language),
		}, fmt.Errorf("%q: %w", language, ErrUnsupportedLanguage)
	}

	if !s.Configured() {
		metrics.TranslationsTotal.WithLabelValues("not_configured").Inc()
		return &TranslationResult{
			Error: "Translation API key not configured. Please set GEMINI_API_KEY in your environment.",
		}, ErrNotConfigured
	}

	if cached, ok := s.cache.Get(cv.ID, language); ok {
		metrics.TranslationsTotal.WithLabelValues("cache_hit").Inc()
		return &cached, nil
	}

	prompt := s.promptBuilder.BuildTranslationPrompt(cv, languageName)
	raw, err := s.generator.GenerateJSON(ctx, translationSystemPrompt, prompt, 0.3)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("api_error").Inc()
		s.log.Warn("translation request failed",
			zap.Uint("cv_id", cv.ID),
			zap.String("language", language),
			zap.Error(err),
		)
		return &TranslationResult{
			Error: fmt.Sprintf("Translation failed: %v", err),
		}, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	var reply map[string]interface{}
	err = json.Unmarshal([]byte(extractJSON(raw)), &reply)
	if err == nil && reply == nil {
		err = errReplyNotObject
	}
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("parse_error").Inc()
		return &TranslationResult{
			Error:       "Failed to parse translation response",
			RawResponse: raw,
		}, fmt.Errorf("%w: %v", ErrTranslationParse, err)
	}

	result := TranslationResult{
		Translated:       true,
		Name:             replyText(reply["name"]),
		Bio:              replyText(reply["bio"]),
		Skills:           replyText(reply["skills"]),
		Projects:         replyText(reply["projects"]),
		Contacts:         replyText(reply["contacts"]),
		Language:         languageName,
		OriginalLanguage: "English",
	}
	for key, value := range reply {
		if _, known := translatedFields[key]; known {
			continue
		}
		if result.Extra == nil {
			result.Extra = make(map[string]interface{})
		}
		result.Extra[key] = value
	}
	s.cache.Set(cv.ID, language, result)
	metrics.TranslationsTotal.WithLabelValues("translated").Inc()

	return &result, nil
}
