package feature

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/feedkit/core"
)

// FeastService 是基于官方 Feast Go SDK 的远程特征服务，实现 core.FeatureService。
//
// Feast 是一个开源的 Feature Store，这里只消费它的在线特征读取能力：
// 把线上物化好的用户/内容统计特征按槽位名取回，覆盖本地抽取的原始值。
//
// 工程特征：
//   - 实时性：优秀（gRPC 低延迟、连接复用）
//   - 失败语义：抽取器把远程失败视为"回退本地值"，此服务不做降级封装
//
// 特征命名约定：特征引用形如 "user_stats:likes"，冒号后的短名
// 需要与 feature.UserSlots / feature.ContentSlots 中的槽位名一致。
type FeastService struct {
	client *feastsdk.GrpcClient

	// Project Feast 项目名称
	Project string

	// UserFeatures / ContentFeatures 在线特征引用列表
	UserFeatures    []string
	ContentFeatures []string

	// UserEntity / ContentEntity 实体键名（默认 user_id / content_id）
	UserEntity    string
	ContentEntity string
}

// FeastOption 是 FeastService 的配置选项。
type FeastOption func(*FeastService)

// WithUserFeatures 设置用户侧在线特征引用。
func WithUserFeatures(refs ...string) FeastOption {
	return func(s *FeastService) { s.UserFeatures = refs }
}

// WithContentFeatures 设置内容侧在线特征引用。
func WithContentFeatures(refs ...string) FeastOption {
	return func(s *FeastService) { s.ContentFeatures = refs }
}

// WithEntities 设置实体键名。
func WithEntities(userEntity, contentEntity string) FeastOption {
	return func(s *FeastService) {
		s.UserEntity = userEntity
		s.ContentEntity = contentEntity
	}
}

// NewFeastService 连接 Feast Feature Server 并创建特征服务。
func NewFeastService(host string, port int, project string, opts ...FeastOption) (*FeastService, error) {
	if port == 0 {
		port = 6565 // Feast 默认 gRPC 端口
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("connect feast: %w", err)
	}

	s := &FeastService{
		client:        client,
		Project:       project,
		UserEntity:    "user_id",
		ContentEntity: "content_id",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FeastService) Name() string { return "feast" }

// GetUserFeatures 获取用户在线特征（key 为特征短名，可直接按槽位覆盖）。
func (s *FeastService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	return s.getOnline(ctx, s.UserFeatures, s.UserEntity, userID)
}

// GetContentFeatures 获取内容在线特征。
func (s *FeastService) GetContentFeatures(ctx context.Context, contentID string) (map[string]float64, error) {
	return s.getOnline(ctx, s.ContentFeatures, s.ContentEntity, contentID)
}

func (s *FeastService) getOnline(ctx context.Context, refs []string, entity, id string) (map[string]float64, error) {
	if len(refs) == 0 {
		return map[string]float64{}, nil
	}
	if id == "" {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "entity id is required")
	}

	req := feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: []feastsdk.Row{{entity: feastsdk.StrVal(id)}},
		Project:  s.Project,
	}
	resp, err := s.client.GetOnlineFeatures(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	out := make(map[string]float64, len(refs))
	row := rows[0]
	for _, ref := range refs {
		val, ok := row[ref]
		if !ok || val == nil {
			continue
		}
		// 按 SDK 值类型提取数值；非数值特征忽略
		switch {
		case val.GetDoubleVal() != 0:
			out[shortName(ref)] = val.GetDoubleVal()
		case val.GetFloatVal() != 0:
			out[shortName(ref)] = float64(val.GetFloatVal())
		case val.GetInt64Val() != 0:
			out[shortName(ref)] = float64(val.GetInt64Val())
		case val.GetInt32Val() != 0:
			out[shortName(ref)] = float64(val.GetInt32Val())
		default:
			// 显式的零值也要保留
			out[shortName(ref)] = val.GetDoubleVal()
		}
	}
	return out, nil
}

// shortName 取特征引用冒号后的短名："user_stats:likes" → "likes"。
func shortName(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Close 关闭底层 gRPC 连接，实现 core.FeatureService。
func (s *FeastService) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

var _ core.FeatureService = (*FeastService)(nil)
