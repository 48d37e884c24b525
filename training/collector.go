// Package training 收集线上交互信号，清洗后按批喂给预测器重训练。
package training

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
)

// sampleDim 是一条样本参与清洗的列数：展平特征 + 标签。
const sampleDim = core.ContentFeatureDim + core.UserFeatureDim + core.ContextFeatureDim + 1

// Collector 是训练数据收集器：并发安全的追加缓冲 + swap-and-drain 批量释放。
//
// 并发模型：
//   - Add 在互斥锁内追加；达到批大小阈值时在锁内换上空缓冲（swap），
//     旧缓冲交给后台 goroutine 清洗并训练（drain），追加方不被训练阻塞
//   - 定时触发走 Flush：不足一批也照常释放
//   - 交付语义是 at-most-once：进程崩溃最多丢一个在途批次，不做重放
//
// 训练失败只记日志：旧模型继续服务，样本不回灌，等下一批。
type Collector struct {
	mu  sync.Mutex
	buf []core.TrainingRecord

	batchSize int
	predictor core.Predictor
	log       zerolog.Logger

	// wg 仅用于测试和关停时等待在途批次
	wg sync.WaitGroup

	// trainTimeout 单个批次训练的超时上限
	trainTimeout time.Duration
}

// NewCollector 创建收集器。batchSize 是触发训练的缓冲阈值。
func NewCollector(cfg *core.Config, predictor core.Predictor, logger zerolog.Logger) *Collector {
	return &Collector{
		buf:          make([]core.TrainingRecord, 0, cfg.BatchSize),
		batchSize:    cfg.BatchSize,
		predictor:    predictor,
		log:          logger.With().Str("component", "training").Logger(),
		trainTimeout: 5 * time.Minute,
	}
}

// Add 追加一条样本；缓冲达到批大小时立即换出并异步训练。
func (c *Collector) Add(rec core.TrainingRecord) {
	c.mu.Lock()
	c.buf = append(c.buf, rec)
	var batch []core.TrainingRecord
	if len(c.buf) >= c.batchSize {
		batch = c.swapLocked()
	}
	c.mu.Unlock()

	if batch != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.release(batch)
		}()
	}
}

// Pending 返回当前缓冲中未释放的样本数。
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Flush 同步换出并释放当前缓冲（定时触发/关停路径）。空缓冲直接返回。
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.swapLocked()
	c.mu.Unlock()

	if batch == nil {
		return nil
	}
	return c.train(ctx, Clean(batch))
}

// Wait 等待所有在途的异步批次完成（测试与关停用）。
func (c *Collector) Wait() { c.wg.Wait() }

// swapLocked 换上空缓冲并返回旧缓冲；调用方必须持有 c.mu。
func (c *Collector) swapLocked() []core.TrainingRecord {
	if len(c.buf) == 0 {
		return nil
	}
	batch := c.buf
	c.buf = make([]core.TrainingRecord, 0, c.batchSize)
	return batch
}

func (c *Collector) release(batch []core.TrainingRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), c.trainTimeout)
	defer cancel()
	if err := c.train(ctx, Clean(batch)); err != nil {
		c.log.Error().Err(err).Int("batch_size", len(batch)).
			Msg("retraining failed, keeping previous model")
	}
}

func (c *Collector) train(ctx context.Context, batch []core.TrainingRecord) error {
	if c.predictor == nil || len(batch) == 0 {
		return nil
	}
	start := time.Now()
	if err := c.predictor.Train(ctx, batch); err != nil {
		return err
	}
	c.log.Info().
		Str("predictor", c.predictor.Name()).
		Int("batch_size", len(batch)).
		Dur("elapsed", time.Since(start)).
		Msg("retraining cycle completed")
	return nil
}

// Clean 按列清洗一批样本：
//   - NaN/Inf 用该列的批均值替换
//   - 偏离批均值超过 3σ 的离群值用批均值替换（不丢整条样本，
//     保持特征完整性，避免离群值扭曲归一化）
//
// 均值与标准差对每列独立计算，标签列与特征列同等对待。
// 批过小（少于 2 条）不做离群处理，只替换 NaN。
func Clean(batch []core.TrainingRecord) []core.TrainingRecord {
	if len(batch) == 0 {
		return batch
	}

	cols := make([][]float64, len(batch))
	for i, rec := range batch {
		row := append(rec.Features.Flatten(), rec.Label)
		if len(row) != sampleDim {
			padded := make([]float64, sampleDim)
			copy(padded, row)
			row = padded
		}
		cols[i] = row
	}

	means := make([]float64, sampleDim)
	stds := make([]float64, sampleDim)
	for j := 0; j < sampleDim; j++ {
		sum, count := 0.0, 0
		for i := range cols {
			v := cols[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			continue
		}
		mean := sum / float64(count)
		variance := 0.0
		for i := range cols {
			v := cols[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			d := v - mean
			variance += d * d
		}
		means[j] = mean
		stds[j] = math.Sqrt(variance / float64(count))
	}

	for i := range cols {
		for j := 0; j < sampleDim; j++ {
			v := cols[i][j]
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				cols[i][j] = means[j]
			case len(batch) >= 2 && stds[j] > 0 && math.Abs(v-means[j]) > 3*stds[j]:
				cols[i][j] = means[j]
			}
		}
	}

	out := make([]core.TrainingRecord, len(batch))
	for i, row := range cols {
		fv := core.FeatureVector{
			Content: append([]float64(nil), row[:core.ContentFeatureDim]...),
			User:    append([]float64(nil), row[core.ContentFeatureDim:core.ContentFeatureDim+core.UserFeatureDim]...),
			Context: append([]float64(nil), row[core.ContentFeatureDim+core.UserFeatureDim:sampleDim-1]...),
		}
		out[i] = core.TrainingRecord{Features: fv, Label: row[sampleDim-1]}
	}
	return out
}
