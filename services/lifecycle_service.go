package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"filekeeper/models"
)

// LifecycleService 文件生命周期协调器。负责上传、删除、签名URL、
// 列表与过期回收，并维护对象存储与元数据库之间的一致性协议：
// 写操作先查对象存储再查数据库，读操作以数据库的软删除标记为准。
//
// 两个后端之间没有跨系统事务，上传/删除在中途失败时可能留下
// 不一致状态（blob 无记录、记录无 blob），与源系统行为保持一致。
type LifecycleService struct {
	objects ObjectStore
	meta    MetadataStore
	audit   AuditLogger
	urlTTL  time.Duration
}

func NewLifecycleService(objects ObjectStore, meta MetadataStore, audit AuditLogger, urlTTL time.Duration) *LifecycleService {
	return &LifecycleService{
		objects: objects,
		meta:    meta,
		audit:   audit,
		urlTTL:  urlTTL,
	}
}

// unavailable 折叠后端意外失败：详情写日志，调用方只拿到 ErrUnavailable
func (s *LifecycleService) unavailable(op, fileName string, err error) error {
	log.Printf("❌ %s 失败 [%s]: %v", op, fileName, err)
	return fmt.Errorf("%w: %s", ErrUnavailable, op)
}

// Upload 上传文件并创建元数据记录。协议顺序严格不可调换：
//  1. 检查对象存储中是否已有同名 blob
//  2. 检查数据库中是否已有同名有效记录
//  3. 写入 blob
//  4. 插入记录（status=UPLOADED, expires_at=now+7d）
//
// 第 4 步失败时不回滚第 3 步写入的 blob，会留下无记录的孤儿对象。
func (s *LifecycleService) Upload(ctx context.Context, fileName string, content io.Reader, contentType string, size int64) (*models.File, error) {
	bucket := s.objects.Bucket()

	exists, err := s.objects.Exists(ctx, fileName)
	if err != nil {
		return nil, s.unavailable("上传前检查对象", fileName, err)
	}
	if exists {
		log.Printf("⚠️ 文件 '%s' 在对象存储中已存在", fileName)
		return nil, ErrBlobExists
	}

	record, err := s.meta.GetLive(ctx, bucket, fileName)
	if err != nil {
		return nil, s.unavailable("上传前检查记录", fileName, err)
	}
	if record != nil {
		log.Printf("⚠️ 文件记录 '%s' 在数据库中已存在", fileName)
		return nil, ErrRecordExists
	}

	locationURI, err := s.objects.Put(ctx, fileName, content, size, contentType)
	if err != nil {
		return nil, s.unavailable("上传对象", fileName, err)
	}
	log.Printf("✅ 文件 '%s' 已上传至 %s", fileName, locationURI)

	file := models.NewFile(fileName, locationURI, bucket, contentType, size)
	if err := s.meta.Create(ctx, file); err != nil {
		// blob 已写入但记录插入失败，孤儿对象留待人工处理
		return nil, s.unavailable("创建文件记录", fileName, err)
	}

	s.audit.LogEvent(EventUpload, fileName, OutcomeSuccess, map[string]string{
		"content_type": contentType,
		"size":         strconv.FormatInt(size, 10),
	})

	return file, nil
}

// Delete 删除 blob 并软删除记录。fileName 为逻辑名，按 contentType
// 追加扩展名后再查找（兼容只传裸名的旧调用方）。
// 第 3 步记录缺失时 blob 已经删掉，会留下孤儿记录。
func (s *LifecycleService) Delete(ctx context.Context, fileName string, contentType models.ContentType) (string, error) {
	objectName := contentType.ObjectName(fileName)
	bucket := s.objects.Bucket()

	exists, err := s.objects.Exists(ctx, objectName)
	if err != nil {
		return "", s.unavailable("删除前检查对象", objectName, err)
	}
	if !exists {
		log.Printf("⚠️ 文件 '%s' 在对象存储中不存在", objectName)
		return "", ErrBlobNotFound
	}

	if err := s.objects.Delete(ctx, objectName); err != nil {
		return "", s.unavailable("删除对象", objectName, err)
	}
	log.Printf("✅ 文件 '%s' 已从对象存储删除", objectName)

	record, err := s.meta.GetLive(ctx, bucket, objectName)
	if err != nil {
		return "", s.unavailable("查询文件记录", objectName, err)
	}
	if record == nil {
		// blob 已删除但没有对应记录
		log.Printf("⚠️ 文件记录 '%s' 在数据库中不存在", objectName)
		return "", ErrRecordNotFound
	}

	if _, err := s.meta.MarkDeleted(ctx, []string{record.ID}, time.Now().UTC()); err != nil {
		return "", s.unavailable("软删除文件记录", objectName, err)
	}
	log.Printf("✅ 文件记录 '%s' 已标记删除", objectName)

	s.audit.LogEvent(EventDelete, objectName, OutcomeSuccess, nil)

	return fmt.Sprintf("文件 '%s' 删除成功", objectName), nil
}

// DownloadURL 签发限时下载URL。只检查对象存储，不碰数据库，
// 即使元数据不一致也能签发。
func (s *LifecycleService) DownloadURL(ctx context.Context, fileName string, contentType models.ContentType) (*models.DownloadURLResponse, error) {
	objectName := contentType.ObjectName(fileName)

	exists, err := s.objects.Exists(ctx, objectName)
	if err != nil {
		return nil, s.unavailable("签发下载URL前检查对象", objectName, err)
	}
	if !exists {
		return nil, ErrBlobNotFound
	}

	url, err := s.objects.PresignGet(ctx, objectName, s.urlTTL)
	if err != nil {
		return nil, s.unavailable("签发下载URL", objectName, err)
	}

	return &models.DownloadURLResponse{
		DownloadURL:     url,
		ValidForSeconds: int(s.urlTTL.Seconds()),
	}, nil
}

// UploadURL 签发限时上传URL，不触碰任何后端状态。客户端直传完成后
// 需另行创建元数据记录——这是元数据与 blob 不一致的主要来源。
func (s *LifecycleService) UploadURL(ctx context.Context, fileName string, contentType models.ContentType) (*models.UploadURLResponse, error) {
	url, err := s.objects.PresignPut(ctx, fileName, string(contentType), s.urlTTL)
	if err != nil {
		return nil, s.unavailable("签发上传URL", fileName, err)
	}

	return &models.UploadURLResponse{
		UploadURL:       url,
		ValidForSeconds: int(s.urlTTL.Seconds()),
	}, nil
}

// List 按对象存储原生游标分页列出文件。不与数据库交叉比对，
// 列表反映的是对象存储的真实内容而非软删除状态。
func (s *LifecycleService) List(ctx context.Context, pageToken string, maxResults int32) (*ObjectPage, error) {
	page, err := s.objects.List(ctx, pageToken, maxResults)
	if err != nil {
		return nil, s.unavailable("列出文件", "", err)
	}
	return page, nil
}

// GetAllExpired 查询所有已过期且未删除的记录，并随即对其做仅元数据
// 的回收（blob 由外部触发器自行删除）。返回回收前的记录快照。
func (s *LifecycleService) GetAllExpired(ctx context.Context) ([]models.ExpiredFileInfo, error) {
	files, err := s.meta.FindExpired(ctx, time.Now().UTC())
	if err != nil {
		return nil, s.unavailable("查询过期文件", "", err)
	}

	if _, err := s.reclaim(ctx, s.meta, files, false); err != nil {
		return nil, s.unavailable("回收过期文件", "", err)
	}

	infos := make([]models.ExpiredFileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, models.ExpiredFileInfo{ID: f.ID, FileName: f.FileName})
	}
	return infos, nil
}

// ReclaimExpired 按 id 集合回收记录。deleteBlobs 为 true 时同时删除
// 对应 blob。返回实际软删除的记录数。
func (s *LifecycleService) ReclaimExpired(ctx context.Context, ids []string, deleteBlobs bool) (int64, error) {
	files, err := s.meta.GetByIDs(ctx, ids)
	if err != nil {
		return 0, s.unavailable("批量查询待回收文件", "", err)
	}

	n, err := s.reclaim(ctx, s.meta, files, deleteBlobs)
	if err != nil {
		return 0, s.unavailable("回收文件", "", err)
	}
	return n, nil
}

// SweepExpired 执行一次完整的过期清理：在独立事务内扫描过期记录，
// 删除仍存在的 blob（缺失的记为孤儿并告警），软删除全部记录。
// 返回本次处理的记录数。
func (s *LifecycleService) SweepExpired(ctx context.Context) (int, error) {
	var count int
	var names []string

	err := s.meta.Transaction(ctx, func(tx MetadataStore) error {
		files, err := tx.FindExpired(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		count = len(files)
		for _, f := range files {
			names = append(names, f.FileName)
		}
		_, err = s.reclaim(ctx, tx, files, true)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("过期清理失败: %w", err)
	}

	for _, name := range names {
		s.audit.LogEvent(EventExpire, name, OutcomeSuccess, nil)
	}

	return count, nil
}

// reclaim 统一的回收流程：可选地删除 blob，然后软删除记录。
// blob 缺失（孤儿记录）只告警，不中断本轮回收。
func (s *LifecycleService) reclaim(ctx context.Context, store MetadataStore, files []models.File, deleteBlobs bool) (int64, error) {
	if len(files) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)

		if !deleteBlobs {
			continue
		}

		exists, err := s.objects.Exists(ctx, f.FileName)
		if err != nil {
			log.Printf("❌ 回收时检查对象失败 [%s]: %v", f.FileName, err)
			continue
		}
		if !exists {
			log.Printf("⚠️ 文件 '%s' 在对象存储中不存在但数据库中有记录（孤儿记录）", f.FileName)
			continue
		}
		if err := s.objects.Delete(ctx, f.FileName); err != nil {
			log.Printf("❌ 回收时删除对象失败 [%s]: %v", f.FileName, err)
			continue
		}
		log.Printf("🗑️ 过期文件 '%s' 已从对象存储删除", f.FileName)
	}

	return store.MarkDeleted(ctx, ids, time.Now().UTC())
}
