package service

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/logger"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const sniffLen = 512

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadService 商品图片等文件的落盘与删除
// 文件按 <dir>/<scene>/<yyyy>/<mm>/<uuid>_<name> 存放，对外路径以 /uploads 开头
type UploadService struct {
	cfg *config.UploadConfig
	now func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.UploadConfig) *UploadService {
	if cfg == nil {
		cfg = &config.UploadConfig{}
	}
	return &UploadService{cfg: cfg, now: time.Now}
}

// uploadInfo 校验阶段得到的文件信息
type uploadInfo struct {
	ContentType string
	Width       int
	Height      int
}

// SaveFile 校验并保存上传文件，返回访问路径
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: empty file", ErrUploadInvalid)
	}
	if err := s.checkHeader(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, err := s.inspect(src); err != nil {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := s.now()
	rel := path.Join(
		normalizeUploadScene(scene),
		now.Format("2006"),
		now.Format("01"),
		uuid.NewString()+"_"+sanitizeUploadFilename(file.Filename),
	)
	if err := s.write(rel, src); err != nil {
		return "", err
	}
	return constants.UploadURLPrefix + "/" + rel, nil
}

func (s *UploadService) checkHeader(file *multipart.FileHeader) error {
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return fmt.Errorf("%w: file exceeds %d MB", ErrUploadInvalid, s.cfg.MaxSize/1024/1024)
	}
	if len(s.cfg.AllowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
		return fmt.Errorf("%w: extension not allowed: %q", ErrUploadInvalid, ext)
	}
	return nil
}

// inspect 按内容识别类型；图片还会检查宽高上限
func (s *UploadService) inspect(src io.ReadSeeker) (uploadInfo, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return uploadInfo{}, err
	}
	info := uploadInfo{ContentType: http.DetectContentType(head[:n])}
	if !s.typeAllowed(info.ContentType) {
		return info, fmt.Errorf("%w: content type not allowed: %s", ErrUploadInvalid, info.ContentType)
	}
	if !strings.HasPrefix(info.ContentType, "image/") {
		return info, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return info, err
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return info, fmt.Errorf("%w: cannot decode image: %v", ErrUploadInvalid, err)
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	if s.cfg.MaxWidth > 0 && info.Width > s.cfg.MaxWidth {
		return info, fmt.Errorf("%w: image width exceeds %d", ErrUploadInvalid, s.cfg.MaxWidth)
	}
	if s.cfg.MaxHeight > 0 && info.Height > s.cfg.MaxHeight {
		return info, fmt.Errorf("%w: image height exceeds %d", ErrUploadInvalid, s.cfg.MaxHeight)
	}
	return info, nil
}

func (s *UploadService) typeAllowed(contentType string) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedTypes {
		if strings.EqualFold(contentType, strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// write 先写临时文件再改名，失败时不留半截文件
func (s *UploadService) write(rel string, src io.Reader) error {
	target := filepath.Join(s.rootDir(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// DeleteFile 按访问路径删除已保存的文件，文件不存在或路径不在上传目录内时忽略
func (s *UploadService) DeleteFile(url string) {
	target, ok := s.resolvePath(url)
	if !ok {
		return
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		logger.Warnw("upload_delete_file_failed", "url", url, "error", err)
	}
}

// DeleteFiles 批量删除文件
func (s *UploadService) DeleteFiles(urls []string) {
	for _, url := range urls {
		s.DeleteFile(url)
	}
}

func (s *UploadService) rootDir() string {
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		return dir
	}
	return "uploads"
}

func (s *UploadService) resolvePath(url string) (string, bool) {
	rel, ok := strings.CutPrefix(strings.TrimSpace(url), constants.UploadURLPrefix+"/")
	if !ok {
		return "", false
	}
	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", false
	}
	return filepath.Join(s.rootDir(), filepath.FromSlash(cleaned)), true
}

func normalizeUploadScene(raw string) string {
	if value := strings.ToLower(strings.TrimSpace(raw)); value == constants.UploadSceneProducts {
		return value
	}
	return "common"
}

func sanitizeUploadFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeFilenameChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		return "file"
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return base
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, item := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(item))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if ext == normalized {
			return true
		}
	}
	return false
}
