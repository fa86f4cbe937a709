package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"job-search-go/internal/config"
	"job-search-go/internal/tracing"
	"job-search-go/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var jsearchTracer = otel.Tracer("job-search-go/provider/jsearch")

// JSearchProvider 通过RapidAPI的JSearch接口检索真实职位。
// 未配置API Key时该来源不参与聚合。
type JSearchProvider struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     *log.Logger
}

// jsearchResponse JSearch接口的响应外层
type jsearchResponse struct {
	Status string          `json:"status"`
	Data   []jsearchRecord `json:"data"`
}

// jsearchRecord JSearch接口的单条职位记录
type jsearchRecord struct {
	JobID             string `json:"job_id"`
	JobTitle          string `json:"job_title"`
	EmployerName      string `json:"employer_name"`
	EmployerLogo      string `json:"employer_logo"`
	EmployerWebsite   string `json:"employer_website"`
	JobCity           string `json:"job_city"`
	JobCountry        string `json:"job_country"`
	JobDescription    string `json:"job_description"`
	JobApplyLink      string `json:"job_apply_link"`
	JobPostedAt       string `json:"job_posted_at_datetime_utc"`
	JobEmploymentType string `json:"job_employment_type"`
	JobIsRemote       bool   `json:"job_is_remote"`
	JobHighlights     struct {
		Qualifications []string `json:"Qualifications"`
		Benefits       []string `json:"Benefits"`
	} `json:"job_highlights"`
}

// NewJSearchProvider 创建JSearch来源适配器
func NewJSearchProvider(cfg *config.JSearchConfig, logger *log.Logger) *JSearchProvider {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JSearchProvider{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name 实现 Provider 接口
func (p *JSearchProvider) Name() string {
	return "jsearch"
}

// Applies 实现 Provider 接口。有API Key时对所有地区生效。
func (p *JSearchProvider) Applies(location string) bool {
	return strings.TrimSpace(p.apiKey) != ""
}

// Search 实现 Provider 接口，调用JSearch接口并转换为统一记录
func (p *JSearchProvider) Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return nil, fmt.Errorf("JSearch API Key未配置")
	}

	query := fmt.Sprintf("%s jobs in %s", strings.Join(skills, " "), location)
	country := CountryCodeForLocation(location)

	ctx, span := jsearchTracer.Start(ctx, "JSearch.Search",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("jsearch.query", query),
			attribute.String("jsearch.country", country),
		))
	defer span.End()

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("country", country)

	reqURL := p.apiURL + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建JSearch请求失败: %w", err)
	}
	httpReq.Header.Set("X-RapidAPI-Key", p.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")

	p.logger.Printf("请求JSearch: query=%q country=%s", query, country)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("发送JSearch请求失败: %w", err)
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		err = fmt.Errorf("读取JSearch响应失败: %w", err)
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		err = fmt.Errorf("JSearch请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
		tracing.RecordHTTPError(span, err, httpResp.StatusCode)
		return nil, err
	}

	var resp jsearchResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("反序列化JSearch响应失败: %w", err)
	}

	records := make([]types.RawJobRecord, 0, len(resp.Data))
	for _, rec := range resp.Data {
		if len(records) >= limit {
			break
		}
		records = append(records, types.RawJobRecord{
			JobID:             rec.JobID,
			JobTitle:          rec.JobTitle,
			EmployerName:      rec.EmployerName,
			EmployerLogo:      rec.EmployerLogo,
			EmployerWebsite:   rec.EmployerWebsite,
			JobCity:           rec.JobCity,
			JobCountry:        rec.JobCountry,
			JobDescription:    rec.JobDescription,
			JobHighlights:     rec.JobHighlights.Qualifications,
			JobBenefits:       rec.JobHighlights.Benefits,
			JobApplyLink:      rec.JobApplyLink,
			JobPostedAt:       rec.JobPostedAt,
			JobEmploymentType: rec.JobEmploymentType,
			JobIsRemote:       rec.JobIsRemote,
		})
	}

	span.SetAttributes(attribute.Int("jsearch.records", len(records)))
	span.SetStatus(codes.Ok, "")
	p.logger.Printf("JSearch返回 %d 条记录", len(records))
	return records, nil
}
