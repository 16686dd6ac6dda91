package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
	"github.com/Francocima/master-skills-scraper/utils"
)

// BrowserOptions configures the headless session.
type BrowserOptions struct {
	Headless      bool
	CookiesPath   string // optional JSON cookie file, "" to skip
	ScreenshotDir string // where block-page screenshots land
}

// BrowserFetcher drives a headless Chromium session for pages that need
// client-side rendering. One fetcher owns one browser context; it is
// acquired per run and must be Closed on every exit path.
type BrowserFetcher struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	bctx     playwright.BrowserContext
	buildURL URLFunc
	timeout  time.Duration
	shots    *utils.ScreenShotDebugger
}

func NewBrowserFetcher(buildURL URLFunc, timeout time.Duration, opts BrowserOptions) (*BrowserFetcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not launch playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgents[rand.Intn(len(userAgents))]),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	// mask webdriver presence before any page script runs
	if err := bctx.AddInitScript(playwright.Script{
		Content: playwright.String("Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"),
	}); err != nil {
		log.Printf("⚠️ Failed to add stealth init script: %v", err)
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing without.", opts.CookiesPath, err)
		} else if err := bctx.AddCookies(cookies); err != nil {
			log.Printf("⚠️ Could not add cookies: %v", err)
		}
	}

	return &BrowserFetcher{
		pw:       pw,
		browser:  browser,
		bctx:     bctx,
		buildURL: buildURL,
		timeout:  timeout,
		shots:    utils.NewScreenShotDebugger(opts.ScreenshotDir),
	}, nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, q scraper.Query, pageIndex int) (*scraper.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := f.buildURL(q, pageIndex)

	// one tab per fetch keeps concurrent runs from interleaving
	// navigations in a shared page
	page, err := f.bctx.NewPage()
	if err != nil {
		return nil, &Error{Class: Transient, URL: target, Err: err}
	}
	defer page.Close()

	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(f.timeout.Milliseconds())),
	}); err != nil {
		// navigation timeouts and dropped connections are both worth a retry
		return nil, &Error{Class: Transient, URL: target, Err: err}
	}

	// look like a reader, not a bot
	utils.RandomDelay(800, 2000)
	if err := utils.SmoothScroll(page); err != nil {
		log.Printf("⚠️ Scroll failed: %v", err)
	}
	utils.MouseJiggle(page)

	if f.blocked(page, target) {
		return nil, &Error{Class: Blocked, URL: target, Err: errors.New("anti-automation challenge page")}
	}

	html, err := page.Content()
	if err != nil {
		return nil, &Error{Class: Transient, URL: target, Err: err}
	}

	return &scraper.RawPage{
		HTML:      html,
		URL:       page.URL(),
		PageIndex: pageIndex,
	}, nil
}

// blocked checks the rendered page for challenge markers the same way
// the title-based Cloudflare checks work, with a screenshot for
// operator debugging.
func (f *BrowserFetcher) blocked(page playwright.Page, target string) bool {
	title, _ := page.Title()
	if strings.Contains(title, "Attention Required") ||
		strings.Contains(title, "Just a moment") ||
		strings.Contains(title, "Cloudflare") {
		f.shots.CaptureAndLog(page, "challenge", "🚨 Challenge page detected at "+target)
		return true
	}
	if count, _ := page.Locator(".captcha, .recaptcha, [data-captcha]").Count(); count > 0 {
		f.shots.CaptureAndLog(page, "captcha", "🚨 CAPTCHA detected at "+target)
		return true
	}
	return false
}

// Close releases the context, browser and driver. Safe to call once
// on every exit path.
func (f *BrowserFetcher) Close() error {
	if f.bctx != nil {
		f.bctx.Close()
	}
	if f.browser != nil {
		f.browser.Close()
	}
	if f.pw != nil {
		return f.pw.Stop()
	}
	return nil
}
