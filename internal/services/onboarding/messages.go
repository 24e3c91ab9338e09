package onboarding

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. Each translation consumes exactly the arguments listed.
const (
	CodeSkillsMin      = "skills.min"        // min, selected
	CodeBioLength      = "bio.length"        // min, max, current
	CodeRequired       = "field.required"
	CodeAvailability   = "availability.enum"
	CodeURL            = "field.url"
	CodeMustAgree      = "field.agree"
	CodeStepOutOfRange = "step.range"        // step

	MsgSubmitFailed   = "submit.failed"   // detail
	MsgSubmitInFlight = "submit.inflight"
	MsgNotFinalStep   = "submit.notfinal"
	MsgValidation     = "validation"
	MsgCompleted      = "completed"
)

var translations = map[string][2]string{ // en, id
	CodeSkillsMin:      {"Pick at least %d skills (%d selected)", "Pilih minimal %d skill (%d dipilih)"},
	CodeBioLength:      {"Bio must be %d to %d characters (currently %d)", "Bio harus %d sampai %d karakter (saat ini %d)"},
	CodeRequired:       {"This field is required", "Wajib diisi"},
	CodeAvailability:   {"Choose Full-time, Part-time or Weekends", "Pilih Full-time, Part-time atau Weekends"},
	CodeURL:            {"Enter a valid http(s) URL", "Masukkan URL http(s) yang valid"},
	CodeMustAgree:      {"You must agree to continue", "Anda harus menyetujui untuk melanjutkan"},
	CodeStepOutOfRange: {"Unknown step %d", "Langkah %d tidak dikenal"},
	MsgSubmitFailed:    {"Submission failed: %s", "Pengajuan gagal: %s"},
	MsgSubmitInFlight:  {"Submission is already in progress", "Pengajuan sedang diproses"},
	MsgNotFinalStep:    {"Finish every step before submitting", "Selesaikan semua langkah sebelum mengirim"},
	MsgValidation:      {"Validation error", "Validasi gagal"},
	MsgCompleted:       {"Onboarding already completed", "Onboarding sudah selesai"},
}

var (
	supportedLocales = []language.Tag{language.English, language.Indonesian}
	localeMatcher    = language.NewMatcher(supportedLocales)
	messages         = catalog.NewBuilder(catalog.Fallback(language.English))
)

func init() {
	for key, t := range translations {
		_ = messages.SetString(language.English, key, t[0])
		_ = messages.SetString(language.Indonesian, key, t[1])
	}
}

// Localizer renders violations in the language negotiated from an
// Accept-Language header.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer picks the best supported language for acceptLanguage, falling
// back to fallback and then English.
func NewLocalizer(acceptLanguage, fallback string) *Localizer {
	tag, _ := language.MatchStrings(localeMatcher, acceptLanguage, fallback)
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}
}

func (l *Localizer) Language() string { return l.tag.String() }

func (l *Localizer) Text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

func (l *Localizer) Message(v Violation) string {
	return l.printer.Sprintf(v.Code, v.Args...)
}

// Errors renders every violation; a nil Localizer falls back to the raw codes.
func (l *Localizer) Errors(errs FieldErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for f, v := range errs {
		if l == nil {
			out[f] = v.Code
			continue
		}
		out[f] = l.Message(v)
	}
	return out
}
