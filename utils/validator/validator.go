package validator

import (
	"io"
	"net/http"
)

// allowedImageMimeTypes Allowed image types, mapped to the extension used for stored originals
var allowedImageMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// IsImage Verify if the file content is an allowed image type.
func IsImage(file io.ReadSeeker) (bool, string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, "", err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return false, "", err
	}

	ok, mimeType := IsImageBytes(buffer[:n])
	return ok, mimeType, nil
}

// IsImageBytes 检测内存中的数据是否为允许的图片类型
func IsImageBytes(data []byte) (bool, string) {
	if len(data) == 0 {
		return false, ""
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	mimeType := http.DetectContentType(head)
	if _, ok := allowedImageMimeTypes[mimeType]; ok {
		return true, mimeType
	}
	return false, mimeType
}

// ExtensionFor 返回 MIME 类型对应的文件扩展名
func ExtensionFor(mimeType string) string {
	if ext, ok := allowedImageMimeTypes[mimeType]; ok {
		return ext
	}
	return ".bin"
}
