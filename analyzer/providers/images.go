package providers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
)

// ImageMIMEType 返回图像的 MIME 类型，未声明时按内容探测。
func ImageMIMEType(img analyzer.Image) string {
	if img.MIMEType != "" {
		return img.MIMEType
	}
	if len(img.Data) > 0 {
		mt := http.DetectContentType(img.Data)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return mt
	}
	return ""
}

// ImageBase64 内联图像数据的 base64 编码。
func ImageBase64(img analyzer.Image) string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// ImageURL 返回可直接放进请求的地址：内联数据编码为 data URL，否则使用远程 URL。
func ImageURL(img analyzer.Image) string {
	if len(img.Data) > 0 {
		return "data:" + ImageMIMEType(img) + ";base64," + ImageBase64(img)
	}
	return img.URL
}

// RequireInlineImages 只接受内联数据的服务商使用，拒绝仅有 URL 的图像。
func (b *Base) RequireInlineImages(images []analyzer.Image) *analyzer.ProviderError {
	for _, img := range images {
		if len(img.Data) == 0 {
			return b.Error(analyzer.ErrInvalidRequest,
				b.spec.Name+" requires inline image data; image URLs are not supported")
		}
	}
	return nil
}
