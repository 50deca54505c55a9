package social

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// Selectors used on relationship, sign-in and profile pages
const (
	personTableSelector   = ".person-table"
	personLinkSelector    = ".person-table a.name"
	usernameFieldSelector = "#field-username"
	passwordFieldSelector = "#field-password"
	signedInSelector      = "#add-new-button"
	followingSelector     = "a.js-button-following"

	signInURL = SiteOrigin + "sign-in/"
)

// ErrLoginRejected is returned when the signed-in marker never appears
var ErrLoginRejected = errors.New("login rejected: wrong credentials or captcha required")

// RodConfig holds browser settings
type RodConfig struct {
	Headless bool
	// Wait bounds every element wait
	Wait time.Duration
}

// RodSession implements Session with a single go-rod tab
type RodSession struct {
	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
	wait    time.Duration
	logger  zerolog.Logger
}

// NewRodSession launches a browser and opens one tab
func NewRodSession(cfg RodConfig, logger zerolog.Logger) (*RodSession, error) {
	if cfg.Wait <= 0 {
		cfg.Wait = 10 * time.Second
	}

	u, err := launcher.New().
		Headless(cfg.Headless).
		Set("blink-settings", "imagesEnabled=false").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	logger.Info().Bool("headless", cfg.Headless).Msg("browser started")

	return &RodSession{
		browser: browser,
		page:    page,
		wait:    cfg.Wait,
		logger:  logger,
	}, nil
}

func (s *RodSession) open(ctx context.Context, url string) (*rod.Page, error) {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return p, nil
}

// waitFor returns nil, nil when selector does not appear within the wait bound
func (s *RodSession) waitFor(p *rod.Page, selector string) (*rod.Element, error) {
	el, err := p.Timeout(s.wait).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	return el.CancelTimeout(), nil
}

func (s *RodSession) ListPage(ctx context.Context, pageURL string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.open(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	table, err := s.waitFor(p, personTableSelector)
	if err != nil {
		return nil, fmt.Errorf("wait person table: %w", err)
	}
	if table == nil {
		return nil, nil
	}

	elements, err := p.Elements(personLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("find person links: %w", err)
	}

	links := make([]string, 0, len(elements))
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == nil {
			continue
		}
		links = append(links, *href)
	}
	return links, nil
}

func (s *RodSession) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.open(ctx, signInURL)
	if err != nil {
		return err
	}

	userField, err := s.waitFor(p, usernameFieldSelector)
	if err != nil || userField == nil {
		return fmt.Errorf("username field: %w", errors.Join(ErrLoginRejected, err))
	}
	passField, err := s.waitFor(p, passwordFieldSelector)
	if err != nil || passField == nil {
		return fmt.Errorf("password field: %w", errors.Join(ErrLoginRejected, err))
	}

	if err := userField.Input(username); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := passField.Input(password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if err := passField.Type(input.Enter); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	marker, err := s.waitFor(p, signedInSelector)
	if err != nil {
		return fmt.Errorf("wait signed in: %w", err)
	}
	if marker == nil {
		return ErrLoginRejected
	}

	s.logger.Info().Msg("login successful")
	return nil
}

func (s *RodSession) ToggleFollow(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.open(ctx, SiteOrigin+NormalizeUsername(username)+"/")
	if err != nil {
		return false, err
	}

	button, err := s.waitFor(p, followingSelector)
	if err != nil {
		return false, fmt.Errorf("wait following button: %w", err)
	}
	if button == nil {
		return false, nil
	}

	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("click following button: %w", err)
	}
	return true, nil
}

func (s *RodSession) Close() error {
	return s.browser.Close()
}
