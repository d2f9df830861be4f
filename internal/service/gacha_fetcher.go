package service

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/config"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// FetchConfig 上游抽卡记录接口的访问配置
type FetchConfig struct {
	// BaseURL 抽卡记录查询接口地址
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	// Timeout 单次请求超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	// InsecureSkipVerify 跳过证书校验，仅用于私服或代理调试
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// DefaultFetchConfig 返回默认配置
func DefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		BaseURL: "https://public-operation-hk4e.mihoyo.com/gacha_info/api/getGachaLog",
		Timeout: 15 * time.Second,
	}
}

// pageSize 上游固定每页 20 条，传更大的值会被截断
const pageSize = 20

// retcodeAuthKeyTimeout 上游对过期 authkey 返回的业务码
const retcodeAuthKeyTimeout = -101

// GachaPage 单页抓取结果。翻页判定必须用上游原始数量和原始末尾 id，
// Records 可能因坏数据被剔除而少于 RawCount
type GachaPage struct {
	Records []*model.GachaRecord
	// RawCount 上游本页返回的原始条数，含被剔除的坏数据
	RawCount int
	// LastRawID 上游本页最后一条的原始 id，作为下一页的游标
	LastRawID string
}

// PageFetcher 抓取一页抽卡记录，endID 为空表示从头开始
type PageFetcher interface {
	FetchPage(ctx context.Context, params *GachaLinkParams, page int, endID string) (*GachaPage, error)
}

// HTTPLogFetcher 通过上游 HTTP 接口抓取抽卡记录
type HTTPLogFetcher struct {
	cfg    *FetchConfig
	client *http.Client
	logger logger.Logger
}

// NewHTTPLogFetcher 创建上游抓取器
func NewHTTPLogFetcher(cfg *FetchConfig, l logger.Logger) (*HTTPLogFetcher, error) {
	merged, err := config.MergeConfig(DefaultFetchConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("merge fetch config failed: %w", err)
	}
	if l == nil {
		l = logger.Default()
	}

	client := &http.Client{Timeout: merged.Timeout}
	if merged.InsecureSkipVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &HTTPLogFetcher{
		cfg:    merged,
		client: client,
		logger: l.Named("gacha.fetcher"),
	}, nil
}

// 上游返回的数字字段全是字符串，单独建一套中间结构再转成领域模型
type upstreamEnvelope struct {
	Retcode int           `json:"retcode"`
	Message string        `json:"message"`
	Data    *upstreamData `json:"data"`
}

type upstreamData struct {
	Page string         `json:"page"`
	Size string         `json:"size"`
	List []upstreamItem `json:"list"`
}

type upstreamItem struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	ItemType  string `json:"item_type"`
	RankType  string `json:"rank_type"`
	GachaType string `json:"gacha_type"`
	UID       string `json:"uid"`
}

const gachaTimeLayout = "2006-01-02 15:04:05"

// FetchPage 抓取指定页。上游业务失败返回 UpstreamError，
// authkey 过期返回 ErrAuthExpired，网络层面失败返回 TransientError。
func (f *HTTPLogFetcher) FetchPage(ctx context.Context, params *GachaLinkParams, page int, endID string) (*GachaPage, error) {
	if endID == "" {
		endID = "0"
	}

	query := url.Values{}
	query.Set("authkey", params.AuthKey)
	query.Set("authkey_ver", params.AuthKeyVer)
	query.Set("sign_type", params.SignType)
	query.Set("gacha_id", params.GachaID)
	query.Set("region", params.Region)
	query.Set("gacha_type", params.InitType)
	query.Set("init_type", params.InitType)
	query.Set("lang", params.Lang)
	query.Set("device_type", params.DeviceType)
	query.Set("game_biz", params.GameBiz)
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(pageSize))
	query.Set("end_id", endID)

	reqURL := f.cfg.BaseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request failed: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyFetchErr("fetch page", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyFetchErr("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var envelope upstreamEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &UpstreamError{Code: -1, Message: "malformed upstream response"}
	}
	if envelope.Retcode != 0 {
		if isAuthExpired(envelope.Retcode, envelope.Message) {
			return nil, ErrAuthExpired
		}
		return nil, &UpstreamError{Code: envelope.Retcode, Message: envelope.Message}
	}
	if envelope.Data == nil {
		return &GachaPage{}, nil
	}

	records := make([]*model.GachaRecord, 0, len(envelope.Data.List))
	for _, item := range envelope.Data.List {
		record, err := item.toRecord()
		if err != nil {
			f.logger.Warn("skip malformed gacha item", "id", item.ID, "error", err)
			continue
		}
		records = append(records, record)
	}

	result := &GachaPage{
		Records:  records,
		RawCount: len(envelope.Data.List),
	}
	if n := len(envelope.Data.List); n > 0 {
		result.LastRawID = envelope.Data.List[n-1].ID
	}

	f.logger.Debug("fetched gacha page", "page", page, "end_id", endID, "count", len(records), "raw_count", result.RawCount)
	return result, nil
}

func (it *upstreamItem) toRecord() (*model.GachaRecord, error) {
	rank, err := strconv.Atoi(it.RankType)
	if err != nil {
		return nil, fmt.Errorf("invalid rank_type %q: %w", it.RankType, err)
	}
	gachaType, err := strconv.Atoi(it.GachaType)
	if err != nil {
		return nil, fmt.Errorf("invalid gacha_type %q: %w", it.GachaType, err)
	}
	ts, err := time.ParseInLocation(gachaTimeLayout, it.Time, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", it.Time, err)
	}
	return &model.GachaRecord{
		ID:        it.ID,
		Time:      ts,
		Name:      it.Name,
		ItemType:  it.ItemType,
		RankType:  rank,
		GachaType: gachaType,
		UID:       it.UID,
	}, nil
}

func isAuthExpired(retcode int, message string) bool {
	if retcode == retcodeAuthKeyTimeout {
		return true
	}
	// 个别区服的过期码不统一，靠报文兜底
	lower := strings.ToLower(message)
	return strings.Contains(lower, "authkey") && (strings.Contains(lower, "timeout") || strings.Contains(lower, "expire"))
}

// classifyFetchErr 传输层失败统一按可重试处理，超时、断连都算
func classifyFetchErr(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}
