package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filekeeper/models"
)

// fakeObject 内存对象
type fakeObject struct {
	data        []byte
	contentType string
	updated     time.Time
}

// fakeObjectStore 内存版对象存储，替代 S3 用于测试
type fakeObjectStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]fakeObject

	// 注入错误
	existsErr error
	putErr    error
	deleteErr error
}

func newFakeObjectStore(bucket string) *fakeObjectStore {
	return &fakeObjectStore{
		bucket:  bucket,
		objects: make(map[string]fakeObject),
	}
}

func (f *fakeObjectStore) Bucket() string { return f.bucket }

func (f *fakeObjectStore) Exists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.objects[name]
	return ok, nil
}

func (f *fakeObjectStore) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[name] = fakeObject{data: data, contentType: contentType, updated: time.Now().UTC()}
	return fmt.Sprintf("s3://%s/%s", f.bucket, name), nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, name)
	return nil
}

// List 按名称排序分页，游标为下一条的序号
func (f *fakeObjectStore) List(ctx context.Context, pageToken string, maxResults int32) (*ObjectPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.objects))
	for name := range f.objects {
		names = append(names, name)
	}
	sort.Strings(names)

	start := 0
	if pageToken != "" {
		idx, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, fmt.Errorf("invalid page token: %q", pageToken)
		}
		start = idx
	}

	end := start + int(maxResults)
	if end > len(names) {
		end = len(names)
	}

	page := &ObjectPage{}
	for _, name := range names[start:end] {
		obj := f.objects[name]
		page.Objects = append(page.Objects, ObjectInfo{
			Name:        name,
			Size:        int64(len(obj.data)),
			Updated:     obj.updated,
			ContentType: obj.contentType,
		})
	}
	if end < len(names) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeObjectStore) PresignGet(ctx context.Context, name string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://fake.example.com/%s/%s?method=GET&expires=%d", f.bucket, name, int(expires.Seconds())), nil
}

func (f *fakeObjectStore) PresignPut(ctx context.Context, name, contentType string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://fake.example.com/%s/%s?method=PUT&content-type=%s&expires=%d", f.bucket, name, contentType, int(expires.Seconds())), nil
}

func (f *fakeObjectStore) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[name]
	return ok
}

func (f *fakeObjectStore) putRaw(name string, data []byte, contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = fakeObject{data: data, contentType: contentType, updated: time.Now().UTC()}
}

// auditEvent 记录一次审计调用
type auditEvent struct {
	eventType string
	fileName  string
	outcome   string
}

// recordingAuditLogger 记录所有审计事件，供断言
type recordingAuditLogger struct {
	mu     sync.Mutex
	events []auditEvent
}

func (r *recordingAuditLogger) LogEvent(eventType, fileName, outcome string, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, auditEvent{eventType, fileName, outcome})
}

func (r *recordingAuditLogger) byType(eventType string) []auditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []auditEvent
	for _, e := range r.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// newTestDB 打开内存 sqlite 并迁移表结构
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只允许单连接，避免连接池各自看到不同的库
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.File{}))
	return db
}

// testEnv 一套接好线的测试环境
type testEnv struct {
	objects *fakeObjectStore
	meta    *GormMetadataStore
	audit   *recordingAuditLogger
	svc     *LifecycleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	objects := newFakeObjectStore("test-bucket")
	meta := NewGormMetadataStore(newTestDB(t))
	audit := &recordingAuditLogger{}
	svc := NewLifecycleService(objects, meta, audit, time.Hour)

	return &testEnv{objects: objects, meta: meta, audit: audit, svc: svc}
}

// seedExpiredFile 插入一条已过期的有效记录
func seedExpiredFile(t *testing.T, env *testEnv, name string) *models.File {
	t.Helper()

	file := models.NewFile(name, "s3://test-bucket/"+name, "test-bucket", "text/plain", 10)
	file.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.meta.Create(context.Background(), file))
	return file
}

func uploadBody(content string) io.Reader {
	return bytes.NewReader([]byte(content))
}
