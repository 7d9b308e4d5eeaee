package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apognu/gocal"
	"go.uber.org/zap"
)

const (
	// DefaultUserAgent — без него часть календарных хостингов отвечает 403.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultTimeout ограничивает одну загрузку фида.
	DefaultTimeout = 15 * time.Second
)

// Client скачивает iCalendar-фид и превращает его в список занятых событий.
// Кэша нет: каждый вызов Fetch идёт в сеть.
type Client struct {
	url       string
	loc       *time.Location
	http      *http.Client
	userAgent string
	logger    *zap.Logger
	onDropped func()
}

type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (и его таймаут).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout задаёт таймаут на копии текущего HTTP-клиента, переданный
// через WithHTTPClient клиент не меняется.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDroppedHook вызывается на каждое отброшенное событие.
func WithDroppedHook(fn func()) Option {
	return func(c *Client) { c.onDropped = fn }
}

func NewClient(url string, loc *time.Location, opts ...Option) *Client {
	c := &Client{
		url:       url,
		loc:       loc,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch загружает фид и возвращает события, пересекающие [from, to].
// Повторы не разворачиваются: событие с RRULE занимает только исходные
// DTSTART/DTEND. Битые события пропускаются поштучно. Ошибки уровня фида
// оборачивают ErrFeedUnavailable или ErrFeedMalformed.
func (c *Client) Fetch(ctx context.Context, from, to time.Time) ([]Event, error) {
	body, err := c.download(ctx)
	if err != nil {
		return nil, err
	}
	return c.parse(body, from, to)
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: некорректный адрес: %w", ErrFeedUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка загрузки календаря: %w", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: календарь вернул статус %d", ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения ответа: %w", ErrFeedUnavailable, err)
	}
	return body, nil
}

func (c *Client) parse(body []byte, from, to time.Time) ([]Event, error) {
	if !bytes.Contains(body, []byte("BEGIN:VCALENDAR")) {
		return nil, fmt.Errorf("%w: нет BEGIN:VCALENDAR", ErrFeedMalformed)
	}

	blocks, err := splitEvents(body)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(blocks))
	unreadable := 0
	for _, b := range blocks {
		raw, err := parseBlock(b)
		if err != nil {
			unreadable++
			c.drop(raw.Uid, err)
			continue
		}
		ev, err := parseEvent(raw, c.loc)
		if err != nil {
			if !errors.Is(err, ErrEventMalformed) {
				return nil, err
			}
			c.drop(raw.Uid, err)
			continue
		}
		if ev.End.Before(from) || ev.Start.After(to) {
			continue
		}
		events = append(events, ev)
	}

	if len(blocks) > 0 && unreadable == len(blocks) {
		return nil, fmt.Errorf("%w: не разобрано ни одно из %d событий", ErrFeedMalformed, len(blocks))
	}
	return events, nil
}

// parseBlock разбирает один VEVENT отдельным прогоном gocal, чтобы ошибка
// в одном событии не роняла весь фид.
func parseBlock(b vevent) (gocal.Event, error) {
	parser := gocal.NewParser(strings.NewReader(b.calendar()))
	parser.SkipBounds = true

	if err := parser.Parse(); err != nil {
		return gocal.Event{}, fmt.Errorf("%w: %w", ErrEventMalformed, err)
	}
	if len(parser.Events) != 1 {
		return gocal.Event{}, fmt.Errorf("%w: нет DTSTART или DTEND", ErrEventMalformed)
	}

	e := parser.Events[0]
	if !b.hasUID {
		e.Uid = ""
	}
	return e, nil
}

func (c *Client) drop(uid string, err error) {
	c.logger.Debug("⚠️ Событие пропущено", zap.String("uid", uid), zap.Error(err))
	if c.onDropped != nil {
		c.onDropped()
	}
}
