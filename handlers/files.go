package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filekeeper/models"
	"filekeeper/services"
)

// FilesHandler 文件生命周期相关接口
type FilesHandler struct {
	svc *services.LifecycleService
}

func NewFilesHandler(svc *services.LifecycleService) *FilesHandler {
	return &FilesHandler{svc: svc}
}

// respondError 将业务错误映射为结构化响应：稳定的原因码 + 可读消息
func respondError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, services.ErrBlobExists), errors.Is(err, services.ErrRecordExists):
		status = http.StatusConflict
	case errors.Is(err, services.ErrBlobNotFound), errors.Is(err, services.ErrRecordNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{
		"success": false,
		"reason":  services.Reason(err),
		"message": err.Error(),
	})
}

// Upload 上传文件
// POST /files (multipart)
func (h *FilesHandler) Upload(c *gin.Context) {
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "BAD_REQUEST",
			"message": "获取上传文件失败: " + err.Error(),
		})
		return
	}
	defer file.Close()

	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "BAD_REQUEST",
			"message": "文件名不能为空",
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	record, err := h.svc.Upload(c.Request.Context(), fileHeader.Filename, file, contentType, fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "文件上传成功",
		"data":    record,
	})
}

// Delete 删除文件（blob 删除 + 记录软删除）
// DELETE /files/:name?content_type=...
func (h *FilesHandler) Delete(c *gin.Context) {
	fileName := c.Param("name")
	contentType := models.ContentType(c.Query("content_type"))

	message, err := h.svc.Delete(c.Request.Context(), fileName, contentType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// DownloadURL 签发限时下载URL
// GET /files/:name/download-url?content_type=...
func (h *FilesHandler) DownloadURL(c *gin.Context) {
	fileName := c.Param("name")
	contentType := models.ContentType(c.Query("content_type"))

	resp, err := h.svc.DownloadURL(c.Request.Context(), fileName, contentType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "下载URL签发成功",
		"data":    resp,
	})
}

// UploadURL 签发限时上传URL（客户端直传，不经过本服务）
// GET /files/signed-upload-url?file_name=...&content_type=...
func (h *FilesHandler) UploadURL(c *gin.Context) {
	fileName := c.Query("file_name")
	contentType := models.ContentType(c.Query("content_type"))

	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "BAD_REQUEST",
			"message": "file_name 不能为空",
		})
		return
	}

	resp, err := h.svc.UploadURL(c.Request.Context(), fileName, contentType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "上传URL签发成功",
		"data":    resp,
	})
}

// List 分页列出对象存储中的文件
// GET /files?page_token=...&max_results=...
func (h *FilesHandler) List(c *gin.Context) {
	pageToken := c.Query("page_token")
	maxResults, err := strconv.Atoi(c.DefaultQuery("max_results", "100"))
	if err != nil || maxResults < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "BAD_REQUEST",
			"message": "max_results 必须是不小于 1 的整数",
		})
		return
	}

	page, err := h.svc.List(c.Request.Context(), pageToken, int32(maxResults))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "文件列表获取成功",
		"data":    page,
	})
}

// GetExpired 查询并回收（仅元数据）所有过期文件，返回 id 与文件名，
// 对应的 blob 由外部清理触发器自行删除
// GET /files/expired
func (h *FilesHandler) GetExpired(c *gin.Context) {
	infos, err := h.svc.GetAllExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "过期文件查询成功",
		"data": gin.H{
			"expired_files": infos,
		},
	})
}

// RemoveExpired 按 id 集合批量回收过期文件（仅元数据）
// POST /files/expired/remove
func (h *FilesHandler) RemoveExpired(c *gin.Context) {
	var req models.RemoveExpiredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "BAD_REQUEST",
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	count, err := h.svc.ReclaimExpired(c.Request.Context(), req.ExpiredFiles, false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "过期文件回收成功",
		"data": gin.H{
			"reclaimed": count,
		},
	})
}
