package scraper

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ternarybob/laboro/internal/models"
)

// StructuredSalary is the parsed form of a free-text salary block
type StructuredSalary struct {
	Min           *float64
	Max           *float64
	Currency      string
	EquityOffered bool
}

var (
	salaryNumberRe = regexp.MustCompile(`[$£€¥]?\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*[Kk]?`)

	equityKeywords = []string{"equity", "stock options", "rsu", "options", "stock"}

	// Checked in order; first symbol present wins
	currencySymbols = []struct {
		symbol string
		code   string
	}{
		{"$", "USD"},
		{"£", "GBP"},
		{"€", "EUR"},
		{"¥", "JPY"},
	}

	remoteKeywords = []string{
		"remote", "work from home", "wfh", "distributed", "anywhere",
		"fully remote", "remote-first", "remote work", "work remotely",
	}

	visaKeywords = []string{
		"visa sponsorship", "h1b", "h-1b", "work authorization",
		"sponsorship available", "sponsor visa", "visa support",
		"eligible for visa", "can sponsor",
	}
)

// ExtractSalaryStructured parses salary text into min/max/currency/equity.
//
//	"$120K - $180K"        → min 120000, max 180000, USD
//	"$150,000/yr + equity" → min/max 150000, USD, equity
//	"€60K - €80K"          → min 60000, max 80000, EUR
func ExtractSalaryStructured(salaryText string) StructuredSalary {
	result := StructuredSalary{Currency: "USD"}

	if salaryText == "" || salaryText == models.FieldUnavailable {
		return result
	}

	lower := strings.ToLower(salaryText)
	for _, kw := range equityKeywords {
		if strings.Contains(lower, kw) {
			result.EquityOffered = true
			break
		}
	}

	for _, c := range currencySymbols {
		if strings.Contains(salaryText, c.symbol) {
			result.Currency = c.code
			break
		}
	}

	matches := salaryNumberRe.FindAllStringSubmatch(salaryText, -1)
	if len(matches) == 0 {
		return result
	}

	hasK := strings.Contains(lower, "k")
	var nums []float64
	for _, m := range matches {
		num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		// "120K" style amounts are quoted in thousands
		if hasK && num < 1000 {
			num *= 1000
		}
		nums = append(nums, float64(int(num)))
	}

	switch {
	case len(nums) == 1:
		result.Min, result.Max = &nums[0], &nums[0]
	case len(nums) >= 2:
		lo, hi := nums[0], nums[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		result.Min, result.Max = &lo, &hi
	}

	return result
}

// ExtractRemoteEligibility reports whether the description mentions remote
// work
func ExtractRemoteEligibility(description string) bool {
	return containsAnyKeyword(description, remoteKeywords)
}

// ExtractVisaSponsorship reports whether the description mentions visa
// sponsorship
func ExtractVisaSponsorship(description string) bool {
	return containsAnyKeyword(description, visaKeywords)
}

func containsAnyKeyword(description string, keywords []string) bool {
	if description == "" || description == models.FieldUnavailable {
		return false
	}
	lower := strings.ToLower(description)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// skillPatterns covers common tech skills, matched case-insensitively
var skillPatterns = []*regexp.Regexp{
	// Programming languages
	regexp.MustCompile(`(?i)\bPython\b`), regexp.MustCompile(`(?i)\bJava\b`),
	regexp.MustCompile(`(?i)\bC\+\+`), regexp.MustCompile(`(?i)\bGo\b`),
	regexp.MustCompile(`(?i)\bRust\b`), regexp.MustCompile(`(?i)\bJavaScript\b`),
	regexp.MustCompile(`(?i)\bTypeScript\b`), regexp.MustCompile(`(?i)\bScala\b`),
	regexp.MustCompile(`(?i)\bKotlin\b`),

	// ML/AI frameworks
	regexp.MustCompile(`(?i)\bTensorFlow\b`), regexp.MustCompile(`(?i)\bPyTorch\b`),
	regexp.MustCompile(`(?i)\bKeras\b`), regexp.MustCompile(`(?i)\bscikit-learn\b`),
	regexp.MustCompile(`(?i)\bHugging\s*Face\b`), regexp.MustCompile(`(?i)\bLangChain\b`),
	regexp.MustCompile(`(?i)\bOpenAI\b`),

	// Cloud platforms
	regexp.MustCompile(`(?i)\bAWS\b`), regexp.MustCompile(`(?i)\bGCP\b`),
	regexp.MustCompile(`(?i)\bGoogle\s*Cloud\b`), regexp.MustCompile(`(?i)\bAzure\b`),

	// Databases
	regexp.MustCompile(`(?i)\bPostgreSQL\b`), regexp.MustCompile(`(?i)\bMySQL\b`),
	regexp.MustCompile(`(?i)\bMongoDB\b`), regexp.MustCompile(`(?i)\bRedis\b`),
	regexp.MustCompile(`(?i)\bSQLite\b`), regexp.MustCompile(`(?i)\bCassandra\b`),

	// DevOps/Tools
	regexp.MustCompile(`(?i)\bDocker\b`), regexp.MustCompile(`(?i)\bKubernetes\b`),
	regexp.MustCompile(`(?i)\bTerraform\b`), regexp.MustCompile(`(?i)\bGit\b`),
	regexp.MustCompile(`(?i)\bCI/CD\b`), regexp.MustCompile(`(?i)\bJenkins\b`),
	regexp.MustCompile(`(?i)\bGitHub\s*Actions\b`),

	// Data tools
	regexp.MustCompile(`(?i)\bSpark\b`), regexp.MustCompile(`(?i)\bAirflow\b`),
	regexp.MustCompile(`(?i)\bKafka\b`), regexp.MustCompile(`(?i)\bdbt\b`),
	regexp.MustCompile(`(?i)\bPandas\b`), regexp.MustCompile(`(?i)\bNumPy\b`),
}

// ExtractSkills finds common tech skills in a description, best-effort.
// Returns a sorted, de-duplicated list with normalized capitalization.
func ExtractSkills(description string) []string {
	if description == "" || description == models.FieldUnavailable {
		return nil
	}

	found := make(map[string]struct{})
	for _, pattern := range skillPatterns {
		for _, match := range pattern.FindAllString(description, -1) {
			// Short all-caps matches are acronyms; keep them upper
			if isUpper(match) && len(match) <= 4 {
				found[strings.ToUpper(match)] = struct{}{}
			} else {
				found[titleCase(match)] = struct{}{}
			}
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// isUpper reports whether s has at least one letter and no lowercase letters
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// titleCase uppercases every letter that follows a non-letter, lowercasing
// the rest ("ci/cd" → "Ci/Cd", "hugging face" → "Hugging Face")
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// DescriptionInsights holds the compact summary fields extracted from a
// description for composable responses
type DescriptionInsights struct {
	Summary                 string
	KeyRequirements         []string
	ResponsibilitiesPreview string
}

var (
	experienceRe = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(of\s*)?(experience|exp)`)

	degreeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(MS|Master|PhD|Doctorate|Bachelor|BS|BA)\s*(degree)?`),
		regexp.MustCompile(`(?i)(Graduate|Undergraduate)\s*degree`),
	}

	responsibilityVerbs = []string{
		"Build", "Design", "Develop", "Lead", "Manage", "Deploy", "Create", "Implement",
	}
)

// ExtractDescriptionInsights produces a short summary, key requirements and
// a responsibilities preview from description text
func ExtractDescriptionInsights(description string) DescriptionInsights {
	if description == "" || description == models.FieldUnavailable {
		return DescriptionInsights{}
	}

	var insights DescriptionInsights

	// Summary: first 300 chars, trimmed back to the last sentence boundary
	runes := []rune(description)
	if len(runes) > 300 {
		head := string(runes[:300])
		if idx := strings.LastIndex(head, "."); idx >= 0 {
			head = head[:idx]
		}
		insights.Summary = head + "."
	} else {
		insights.Summary = description
	}

	if m := experienceRe.FindStringSubmatch(description); m != nil {
		insights.KeyRequirements = append(insights.KeyRequirements,
			fmt.Sprintf("%s+ years experience", m[1]))
	}

	for _, re := range degreeRes {
		if m := re.FindString(description); m != "" {
			insights.KeyRequirements = append(insights.KeyRequirements, m)
			break
		}
	}

	skills := ExtractSkills(description)
	if len(skills) > 5 {
		skills = skills[:5]
	}
	insights.KeyRequirements = append(insights.KeyRequirements, skills...)

	// Responsibilities: lines opening with an action verb, truncated
	var responsibilities []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		for _, verb := range responsibilityVerbs {
			if strings.HasPrefix(line, verb) {
				if len(line) > 80 {
					line = line[:80]
				}
				responsibilities = append(responsibilities, line)
				break
			}
		}
	}
	if len(responsibilities) > 3 {
		responsibilities = responsibilities[:3]
	}
	insights.ResponsibilitiesPreview = strings.Join(responsibilities, " • ")

	return insights
}
