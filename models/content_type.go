package models

// ContentType 常见 MIME 类型枚举。部分调用方只传逻辑文件名，
// 由服务端根据 content_type 推导扩展名后再去后端查找。
type ContentType string

const (
	// 图片
	ContentTypeJPEG ContentType = "image/jpeg"
	ContentTypePNG  ContentType = "image/png"
	ContentTypeGIF  ContentType = "image/gif"
	ContentTypeSVG  ContentType = "image/svg+xml"
	ContentTypeWEBP ContentType = "image/webp"

	// 音视频
	ContentTypeMP3  ContentType = "audio/mpeg"
	ContentTypeWAV  ContentType = "audio/wav"
	ContentTypeMP4  ContentType = "video/mp4"
	ContentTypeWEBM ContentType = "video/webm"

	// 文本
	ContentTypePlain ContentType = "text/plain"
	ContentTypeHTML  ContentType = "text/html"
	ContentTypeCSV   ContentType = "text/csv"
	ContentTypeXML   ContentType = "text/xml"

	// 应用
	ContentTypeJSON ContentType = "application/json"
	ContentTypePDF  ContentType = "application/pdf"
	ContentTypeZIP  ContentType = "application/zip"
	ContentTypeGZIP ContentType = "application/gzip"
	ContentTypeDOCX ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLSX ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// 二进制
	ContentTypeOctetStream ContentType = "application/octet-stream"
)

var contentTypeExtensions = map[ContentType]string{
	ContentTypeJPEG:        ".jpg",
	ContentTypePNG:         ".png",
	ContentTypeGIF:         ".gif",
	ContentTypeSVG:         ".svg",
	ContentTypeWEBP:        ".webp",
	ContentTypeMP3:         ".mp3",
	ContentTypeWAV:         ".wav",
	ContentTypeMP4:         ".mp4",
	ContentTypeWEBM:        ".webm",
	ContentTypePlain:       ".txt",
	ContentTypeHTML:        ".html",
	ContentTypeCSV:         ".csv",
	ContentTypeXML:         ".xml",
	ContentTypeJSON:        ".json",
	ContentTypePDF:         ".pdf",
	ContentTypeZIP:         ".zip",
	ContentTypeGZIP:        ".gz",
	ContentTypeDOCX:        ".docx",
	ContentTypeXLSX:        ".xlsx",
	ContentTypeOctetStream: ".bin",
}

// Extension 返回 MIME 类型对应的标准扩展名（含点号），未识别时返回空串
func (c ContentType) Extension() string {
	return contentTypeExtensions[c]
}

// ObjectName 在逻辑文件名后追加扩展名，得到后端实际对象名
func (c ContentType) ObjectName(fileName string) string {
	return fileName + c.Extension()
}
