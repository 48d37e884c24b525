// Package ingest 记录原始交互事件：追加写入、滚动窗口、不回改。
package ingest

import (
	"context"
	"encoding/json"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
)

// Recorder 是交互事件日志：按用户组织的有序集合（score = 事件时间戳）。
// 事件一经写入不再修改；超过保留窗口的事件在后续写入时顺带清理。
//
// Recorder 同时实现 core.EventSource，可以直接作为画像构建器的事件来源。
type Recorder struct {
	store     core.KeyValueStore
	retention time.Duration
	log       zerolog.Logger

	// seq 打散同一秒内完全相同的事件，避免 zset 成员去重吞事件
	seq atomic.Uint64
}

// storedEvent 是事件在存储中的信封结构。
type storedEvent struct {
	Seq   uint64                `json:"seq"`
	Event core.InteractionEvent `json:"event"`
}

// NewRecorder 创建事件记录器。retention 是滚动保留窗口。
func NewRecorder(store core.KeyValueStore, retention time.Duration, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:     store,
		retention: retention,
		log:       logger.With().Str("component", "ingest").Logger(),
	}
}

func eventKey(userID string) string { return "events:" + userID }

// Record 追加一条交互事件，并顺带清理保留窗口之外的旧事件。
func (r *Recorder) Record(ctx context.Context, ev core.InteractionEvent) error {
	if ev.UserID == "" || ev.ContentID == "" {
		return core.NewDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "user id and content id are required")
	}
	if !ev.Type.Valid() {
		return core.NewDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "unknown interaction type: "+string(ev.Type))
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	data, err := json.Marshal(storedEvent{Seq: r.seq.Add(1), Event: ev})
	if err != nil {
		return err
	}

	key := eventKey(ev.UserID)
	score := float64(ev.Timestamp.UnixNano()) / float64(time.Second)
	if err := r.store.ZAdd(ctx, key, score, string(data)); err != nil {
		return err
	}

	// 滚动窗口清理：失败只记日志，不影响写入结果
	if r.retention > 0 {
		cutoff := float64(time.Now().Add(-r.retention).UnixNano()) / float64(time.Second)
		if err := r.store.ZRemRangeByScore(ctx, key, 0, cutoff); err != nil {
			r.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("prune old events failed")
		}
	}
	return nil
}

// GetInteractionHistory 返回窗口内的事件（时间正序）。实现 core.EventSource。
func (r *Recorder) GetInteractionHistory(ctx context.Context, userID string, window time.Duration) ([]core.InteractionEvent, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "user id is required")
	}

	min := 0.0
	if window > 0 {
		min = float64(time.Now().Add(-window).UnixNano()) / float64(time.Second)
	}

	members, err := r.store.ZRangeByScore(ctx, eventKey(userID), min, math.MaxFloat64)
	if err != nil {
		return nil, err
	}

	events := make([]core.InteractionEvent, 0, len(members))
	for _, m := range members {
		var se storedEvent
		if err := json.Unmarshal([]byte(m), &se); err != nil {
			// 坏数据跳过，不让单条脏事件毒化整个画像
			r.log.Warn().Str("user_id", userID).Msg("skip malformed event entry")
			continue
		}
		events = append(events, se.Event)
	}
	return events, nil
}

var _ core.EventSource = (*Recorder)(nil)
