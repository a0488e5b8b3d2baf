package httpx

import (
	"github.com/imblue/mep-ui-gateway/internal/domain/access"
	domainauth "github.com/imblue/mep-ui-gateway/internal/domain/auth"
)

// TemplateData is the payload handed to the layout template and, through it,
// to the page content templates.
type TemplateData struct {
	Title           string
	ContentTemplate string
	Session         *domainauth.Session
	NavLinks        []access.NavLink
}

// Content template names, one per served page.
const (
	TemplateIndex           = "index-content"
	TemplateDashboard       = "dashboard-content"
	TemplateContainerUpload = "container-upload-content"
	TemplateDicomUpload     = "dicom-upload-content"
)
