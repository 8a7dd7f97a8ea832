package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 画像1枚の上限
const maxImageSize = 10 << 20 // 10MB

// 受け付ける画像拡張子
var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// /admin/products のHTTP（multipart/form-dataで画像込み）
type AdminProductHandler struct {
	uc  *usecase.ProductUsecase
	cfg config.Config
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, cfg config.Config) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, cfg: cfg}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	in, err := h.bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	// 新規作成は画像必須
	imagePath, err := h.saveUploadedImage(c)
	if err != nil {
		return writeError(c, err)
	}
	if imagePath == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image is required"})
	}
	in.Image = imagePath

	created, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		// 保存済み画像は片付ける
		h.removeImageFile(imagePath)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	in, err := h.bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	// 画像が来なければ既存のまま
	newImage, err := h.saveUploadedImage(c)
	if err != nil {
		return writeError(c, err)
	}

	oldImage := ""
	if newImage == "" {
		current, err := h.uc.Detail(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		in.Image = current.Image
	} else {
		current, err := h.uc.Detail(c.Request().Context(), id)
		if err != nil {
			h.removeImageFile(newImage)
			return writeError(c, err)
		}
		oldImage = current.Image
		in.Image = newImage
	}

	updated, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		if newImage != "" {
			h.removeImageFile(newImage)
		}
		return writeError(c, err)
	}

	// 差し替え成功後に旧画像を削除
	if newImage != "" && oldImage != "" && oldImage != newImage {
		h.removeImageFile(oldImage)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	imagePath, err := h.uc.Delete(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	if imagePath != "" {
		h.removeImageFile(imagePath)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

// multipartのフォーム値からProductInputを組み立てる（画像以外）
func (h *AdminProductHandler) bindProductForm(c echo.Context) (usecase.ProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		return usecase.ProductInput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	available := int64(0)
	if v := strings.TrimSpace(c.FormValue("available")); v != "" {
		available, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return usecase.ProductInput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid available")
		}
	}

	features, err := parseFeatures(c.FormValue("features"))
	if err != nil {
		return usecase.ProductInput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid features")
	}

	return usecase.ProductInput{
		Name:              c.FormValue("name"),
		Price:             price,
		Description:       c.FormValue("description"),
		Category:          c.FormValue("category"),
		Available:         available,
		Discount:          c.FormValue("discount"),
		Brand:             c.FormValue("brand"),
		Model:             c.FormValue("model"),
		Connectivity:      c.FormValue("connectivity"),
		Features:          features,
		Color:             c.FormValue("color"),
		BatteryLife:       c.FormValue("battery_life"),
		NoiseCancellation: formBool(c.FormValue("noise_cancellation")),
		Microphone:        formBool(c.FormValue("microphone")),
	}, nil
}

// featuresはJSON配列かカンマ区切りのどちらでも受ける
func parseFeatures(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func formBool(v string) bool {
	switch strings.TrimSpace(v) {
	case "1", "true", "TRUE", "True", "on":
		return true
	default:
		return false
	}
}

// 画像ファイルを保存してURLパスを返す。ファイルが無ければ("", nil)。
func (h *AdminProductHandler) saveUploadedImage(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// 画像なし
		return "", nil
	}

	if fh.Size > maxImageSize {
		return "", usecase.NewHTTPError(http.StatusBadRequest, "image too large")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "", usecase.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}

	src, err := fh.Open()
	if err != nil {
		return "", usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	defer src.Close()

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	// 衝突しないファイル名を付ける
	name := uuid.NewString() + ext
	dstPath := filepath.Join(h.cfg.UploadDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	return "/uploads/" + name, nil
}

// DBに入っている"/uploads/xxx"から実ファイルを消す
func (h *AdminProductHandler) removeImageFile(imagePath string) {
	base := filepath.Base(imagePath)
	if base == "" || base == "." || base == "/" {
		return
	}
	os.Remove(filepath.Join(h.cfg.UploadDir, base))
}
