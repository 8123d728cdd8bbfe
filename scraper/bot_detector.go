package scraper

import (
	"regexp"
	"strings"
)

// BotDetector detects bot walls and CAPTCHAs in rendered pages
type BotDetector struct {
	botPatterns     []*regexp.Regexp
	captchaPatterns []*regexp.Regexp
	blockPatterns   []*regexp.Regexp
}

// NewBotDetector creates a new bot detector
func NewBotDetector() *BotDetector {
	return &BotDetector{
		botPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)bot detected`),
			regexp.MustCompile(`(?i)please verify you are human`),
			regexp.MustCompile(`(?i)not a robot`),
			regexp.MustCompile(`(?i)pardon our interruption`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)too many requests`),
			regexp.MustCompile(`(?i)ddos protection`),
		},
		captchaPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)enter the characters you see below`),
			regexp.MustCompile(`(?i)verify you are human`),
			regexp.MustCompile(`(?i)select all images`),
		},
		blockPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)403 forbidden`),
			regexp.MustCompile(`(?i)429 too many requests`),
			regexp.MustCompile(`(?i)503 service unavailable`),
		},
	}
}

// DetectBotWall checks if the page content indicates a bot wall.
// It returns the verdict, the block type and the matched patterns.
func (bd *BotDetector) DetectBotWall(pageContent, pageTitle string) (bool, string, string) {
	content := strings.ToLower(pageContent + " " + pageTitle)

	score := 0.0
	var reasons []string
	blockType := "bot_wall"

	for _, pattern := range bd.botPatterns {
		if pattern.MatchString(content) {
			score += 0.3
			reasons = append(reasons, pattern.String())
		}
	}

	for _, pattern := range bd.captchaPatterns {
		if pattern.MatchString(content) {
			score += 0.5
			reasons = append(reasons, "CAPTCHA detected: "+pattern.String())
			blockType = "captcha"
		}
	}

	for _, pattern := range bd.blockPatterns {
		if pattern.MatchString(content) {
			score += 0.4
			reasons = append(reasons, "HTTP error: "+pattern.String())
			if blockType != "captcha" {
				blockType = "http_error"
			}
		}
	}

	// Block pages are short; a long results page mentioning one phrase is not.
	if len(content) < 1000 && score > 0 {
		score += 0.2
	}

	return score > 0.3, blockType, strings.Join(reasons, "; ")
}

func (bd *BotDetector) check(page Page) error {
	if blocked, kind, reason := bd.DetectBotWall(page.Text(), page.Title()); blocked {
		return &BlockedError{URL: page.URL(), Kind: kind, Reason: reason}
	}
	return nil
}

// BlockedError describes a rendered page that was a bot wall
type BlockedError struct {
	URL    string
	Kind   string
	Reason string
}

func (e *BlockedError) Error() string {
	return ErrBlocked.Error() + " (" + e.Kind + ") at " + e.URL + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrBlocked
func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}
