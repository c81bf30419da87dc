package web

import (
	"time"

	"golang.org/x/text/language"
)

// shortDateLayouts are the numeric short-date layouts of the supported locales.
// The first entry is the fallback.
var shortDateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/06"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "02.01.06"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/06"},
	{language.Italian, "02/01/06"},
	{language.Dutch, "02-01-2006"},
	{language.BrazilianPortuguese, "02/01/2006"},
	{language.Japanese, "2006/01/02"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "06. 1. 2."},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(shortDateLayouts))
	for i, l := range shortDateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DateFormatter formats tweet timestamps as a short date for one locale
type DateFormatter struct {
	loc    *time.Location
	layout string
}

// NewDateFormatter picks the short-date layout best matching an
// Accept-Language header. Unparseable or unknown languages fall back to en-US.
func NewDateFormatter(acceptLanguage string, loc *time.Location) DateFormatter {
	if loc == nil {
		loc = time.UTC
	}

	layout := shortDateLayouts[0].layout
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
		_, index, confidence := dateMatcher.Match(tags...)
		if confidence != language.No {
			layout = shortDateLayouts[index].layout
		}
	}

	return DateFormatter{layout: layout, loc: loc}
}

// Format renders t as a short date
func (f DateFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	layout := f.layout
	if layout == "" {
		layout = shortDateLayouts[0].layout
	}
	loc := f.loc
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}
