package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vbonduro/homeinv/internal/imagestore"
)

const maxImageSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImage(data []byte) bool {
	return isWebP(data) || allowedImageTypes[http.DetectContentType(data)]
}

// parseForm accepts both multipart and urlencoded submissions; multipart is
// the normal path since create/update may carry an image file.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxImageSize)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// saveUpload stores the optional "image" form file under category and
// returns its stored path, or "" when the form carries no image.
func (s *Server) saveUpload(r *http.Request, category string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read image field: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Error("failed to close upload file", "error", cerr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if !allowedImage(data) {
		return "", errUnsupportedImage
	}

	return s.imgStore.Save(r.Context(), category, header.Filename, bytes.NewReader(data))
}

var errUnsupportedImage = errors.New("unsupported image format")

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	filename := r.PathValue("filename")

	if !imagestore.ValidCategory(category) {
		s.writeBadRequest(w, "invalid image category")
		return
	}
	if !safeFilename(filename) {
		s.writeBadRequest(w, "invalid filename")
		return
	}

	rc, mimeType, err := s.imgStore.Get(r.Context(), category+"/"+filename)
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "image not found"})
			return
		}
		s.writeError(w, err, "failed to read image")
		return
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			s.logger.Error("failed to close image file", "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error("failed to write image response", "error", err)
	}
}

// safeFilename rejects path separators and parent-directory hops.
func safeFilename(name string) bool {
	if name == "" || name == "." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return !strings.Contains(name, "..")
}
