package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type certificateOpener interface {
	Open(token string) (*os.File, string, error)
}

// CertificateHandler streams issued certificates to holders of a signed link.
type CertificateHandler struct {
	service certificateOpener
}

// NewCertificateHandler constructs a certificate handler.
func NewCertificateHandler(svc certificateOpener) *CertificateHandler {
	return &CertificateHandler{service: svc}
}

// Download godoc
// @Summary Download certificate
// @Description The token in the path is the credential
// @Tags Certificates
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /api/certificates/{token} [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	file, name, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read certificate"))
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}
