package normalization

import (
  "strings"
)

// ParseInputString trims surrounding whitespace and collapses internal runs of
// whitespace down to single spaces. Case is preserved (passwords pass through
// here too).
func ParseInputString(in string) string {
  return strings.Join(strings.Fields(in), " ")
}

func ParseInputStringPtr(in *string) *string {
  if in == nil {
    return nil
  }
  out := ParseInputString(*in)
  return &out
}

// ParseEmail normalizes an email address: trimmed and lowercased.
func ParseEmail(in string) string {
  return strings.ToLower(ParseInputString(in))
}

// ParseLanguageCode lowers and trims a language code like "EN " -> "en".
func ParseLanguageCode(in string) string {
  return strings.ToLower(ParseInputString(in))
}

// ParseCurrencyCode uppers and trims a currency code like "usd" -> "USD".
func ParseCurrencyCode(in string) string {
  return strings.ToUpper(ParseInputString(in))
}

// ParseFileExtension returns the lowercased extension of a file name,
// including the leading dot ("report.XLSX" -> ".xlsx").
func ParseFileExtension(fileName string) string {
  name := ParseInputString(fileName)
  idx := strings.LastIndex(name, ".")
  if idx < 0 {
    return ""
  }
  return strings.ToLower(name[idx:])
}
