package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	ipinfoCountryURL = "https://ipinfo.io/country"
	ipapiCountryURL  = "https://ipapi.co/json"
	probeTimeout     = 3 * time.Second
	maxProbeBody     = 4 << 10
)

// ErrInvalidCountry 表示探测接口返回的内容不是两位国家代码。
var ErrInvalidCountry = errors.New("region: invalid country code")

// HTTPClient 最小化 HTTP 客户端接口，便于测试替换。
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// probe 是一个国家代码查询接口及其响应格式。
type probe struct {
	url   string
	parse func([]byte) (string, error)
}

// Detector 按顺序查询 IP 归属地接口，给 mirror=auto 选择下载源。
// 第一次成功的结果在进程内复用。
type Detector struct {
	primary  probe
	fallback probe
	client   HTTPClient
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	country string
}

// Option 用于配置 Detector。
type Option func(*Detector)

// WithEndpoint 替换返回纯文本国家代码的主接口。
func WithEndpoint(url string) Option {
	return func(d *Detector) {
		if url != "" {
			d.primary.url = url
		}
	}
}

// WithFallbackEndpoint 替换返回 JSON 的备用接口，传空字符串关闭备用查询。
func WithFallbackEndpoint(url string) Option {
	return func(d *Detector) { d.fallback.url = url }
}

func WithHTTPClient(client HTTPClient) Option {
	return func(d *Detector) {
		if client != nil {
			d.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDetectorLogger 指定记录单个接口失败的日志器。
func WithDetectorLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector 创建 Detector，默认先查 ipinfo.io，失败后查 ipapi.co。
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		primary:  probe{url: ipinfoCountryURL, parse: countryFromText},
		fallback: probe{url: ipapiCountryURL, parse: countryFromJSON},
		client:   http.DefaultClient,
		timeout:  probeTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CountryCode 返回大写的两位国家代码（如 CN）。所有接口都失败时返回合并后的错误，且不缓存失败。
func (d *Detector) CountryCode(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.country != "" {
		return d.country, nil
	}

	var errs []error
	for _, p := range []probe{d.primary, d.fallback} {
		if p.url == "" {
			continue
		}
		country, err := d.query(ctx, p)
		if err == nil {
			d.country = country
			d.logger.Debug("mirror_country_detected", "country", country, "endpoint", p.url)
			return country, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		d.logger.Debug("mirror_probe_failed", "endpoint", p.url, "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("region: no lookup endpoint configured")
	}
	return "", errors.Join(errs...)
}

func (d *Detector) query(ctx context.Context, p probe) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("region: lookup %s: %w", p.url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("region: lookup %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("region: lookup %s: status %d", p.url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return "", fmt.Errorf("region: lookup %s: %w", p.url, err)
	}
	return p.parse(body)
}

func countryFromText(body []byte) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(string(body)))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidCountry, code)
	}
	return code, nil
}

func countryFromJSON(body []byte) (string, error) {
	var payload struct {
		CountryCode string `json:"country_code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("region: decode lookup response: %w", err)
	}
	return countryFromText([]byte(payload.CountryCode))
}
