package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvforge/internal/config"
	"cvforge/internal/database"
	"cvforge/internal/storage"
)

// assetObjectStorage 是资产处理器需要的对象存储能力子集，测试注入假实现。
type assetObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// assetStore 维护资产元数据记录。
type assetStore interface {
	Create(ctx context.Context, asset database.Asset) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]database.Asset, error)
	FindByKey(ctx context.Context, userID uint, objectKey string) (*database.Asset, error)
	Delete(ctx context.Context, id uint) error
}

type gormAssetStore struct {
	db *gorm.DB
}

func newGormAssetStore(db *gorm.DB) *gormAssetStore {
	return &gormAssetStore{db: db}
}

func (s *gormAssetStore) Create(ctx context.Context, asset database.Asset) error {
	return s.db.WithContext(ctx).Create(&asset).Error
}

func (s *gormAssetStore) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&database.Asset{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *gormAssetStore) ListByUser(ctx context.Context, userID uint, limit int) ([]database.Asset, error) {
	var assets []database.Asset
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&assets).Error
	return assets, err
}

func (s *gormAssetStore) FindByKey(ctx context.Context, userID uint, objectKey string) (*database.Asset, error) {
	var asset database.Asset
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND object_key = ?", userID, objectKey).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *gormAssetStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&database.Asset{}, id).Error
}

// AssetHandler 负责个人资料图片的上传与访问。
// 上传前做大小/类型/配额检查，配置了 clamd 时先扫描再入库。
type AssetHandler struct {
	store         assetStore
	Storage       assetObjectStorage
	Logger        *slog.Logger
	ClamdAddr     string
	MaxBytes      int64
	MIMEWhitelist []string
	RedisClient   redis.UniversalClient

	maxAssetsPerUser int
	maxUploadsPerDay int
}

// NewAssetHandler 返回 AssetHandler 实例。
func NewAssetHandler(db *gorm.DB, storageClient *storage.Client, redisClient redis.UniversalClient, logger *slog.Logger, cfg config.UploadConfig) *AssetHandler {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &AssetHandler{
		store:            newGormAssetStore(db),
		Storage:          storageClient,
		Logger:           logger,
		ClamdAddr:        cfg.ClamdAddr,
		MaxBytes:         maxBytes,
		MIMEWhitelist:    []string{"image/png", "image/jpeg", "image/webp"},
		RedisClient:      redisClient,
		maxAssetsPerUser: cfg.MaxAssetsPerUser,
		maxUploadsPerDay: cfg.MaxUploadsPerDay,
	}
}

func (h *AssetHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// UploadAsset 处理受保护的图片上传。
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if file.Size > h.MaxBytes {
		BadRequest(c, "file too large")
		return
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	head := make([]byte, 512)
	n, err := fileReader.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		fileReader.Close()
		Internal(c, "failed to read file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	fileReader.Close()

	allowed := false
	for _, mime := range h.MIMEWhitelist {
		if strings.EqualFold(contentType, mime) {
			allowed = true
			break
		}
	}
	if !allowed {
		BadRequest(c, "unsupported file type")
		return
	}

	ctx := c.Request.Context()

	if h.maxAssetsPerUser > 0 {
		count, err := h.store.CountByUser(ctx, userID)
		if err != nil {
			Internal(c, "failed to count assets")
			return
		}
		if count >= int64(h.maxAssetsPerUser) {
			Forbidden(c, "asset limit reached")
			return
		}
	}

	if h.maxUploadsPerDay > 0 && h.RedisClient != nil {
		rateKey := fmt.Sprintf("rate:asset-upload:%d:%s", userID, time.Now().UTC().Format("20060102"))
		count, err := incrWithTTL(ctx, h.RedisClient, rateKey, 24*time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.maxUploadsPerDay) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily upload limit exceeded"})
			return
		}
	}

	if h.ClamdAddr != "" {
		if ok := h.scanUpload(c, file); !ok {
			return
		}
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	ext := mimeExtensions[strings.ToLower(contentType)]
	objectKey := fmt.Sprintf("user-assets/%d/%s.%s", userID, uuid.NewString(), ext)

	if _, err := h.Storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		h.logger().Error("upload file", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	asset := database.Asset{
		UserID:    userID,
		ObjectKey: objectKey,
		MimeType:  contentType,
		SizeBytes: file.Size,
	}
	if err := h.store.Create(ctx, asset); err != nil {
		h.logger().Error("record asset", slog.String("error", err.Error()))
		if delErr := h.Storage.DeleteObject(ctx, objectKey); delErr != nil {
			h.logger().Error("rollback asset object", slog.String("error", delErr.Error()))
		}
		Internal(c, "failed to record asset")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// scanUpload 通过 clamd 扫描上传内容；不通过时已写好响应。
func (h *AssetHandler) scanUpload(c *gin.Context, file *multipart.FileHeader) bool {
	clamdClient := clamd.NewClamd(h.ClamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return false
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		h.logger().Error("scan file", slog.String("error", err.Error()))
		Internal(c, "failed to scan file")
		return false
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return false
		}
	}
	return true
}

// ListAssets 列出用户上传的资产以及临时预览链接。
func (h *AssetHandler) ListAssets(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	limitStr := c.DefaultQuery("limit", "60")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 60
	}
	if limit > 200 {
		limit = 200
	}

	ctx := c.Request.Context()
	assets, err := h.store.ListByUser(ctx, userID, limit)
	if err != nil {
		h.logger().Error("list assets", slog.String("error", err.Error()))
		Internal(c, "failed to list assets")
		return
	}

	items := make([]gin.H, 0, len(assets))
	for _, asset := range assets {
		url, err := h.Storage.GeneratePresignedURL(ctx, asset.ObjectKey, 10*time.Minute)
		if err != nil {
			h.logger().Error("generate asset url",
				slog.String("objectKey", asset.ObjectKey), slog.String("error", err.Error()))
			continue
		}
		items = append(items, gin.H{
			"objectKey":  asset.ObjectKey,
			"previewUrl": url,
			"size":       asset.SizeBytes,
			"mimeType":   asset.MimeType,
			"createdAt":  asset.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetAssetURL 返回资产的临时预签名 URL。
func (h *AssetHandler) GetAssetURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	if !isValidUserAssetObjectKey(userID, objectKey) {
		NotFound(c, "asset not found")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		h.logger().Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// DeleteAsset 删除资产记录与对应对象。
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	ctx := c.Request.Context()
	asset, err := h.store.FindByKey(ctx, userID, objectKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "asset not found")
			return
		}
		Internal(c, "failed to query asset")
		return
	}

	if err := h.Storage.DeleteObject(ctx, asset.ObjectKey); err != nil {
		h.logger().Error("delete asset object", slog.String("error", err.Error()))
		Internal(c, "failed to delete asset")
		return
	}
	if err := h.store.Delete(ctx, asset.ID); err != nil {
		Internal(c, "failed to delete asset record")
		return
	}

	c.Status(http.StatusNoContent)
}
