package controllers

import (
	"errors"
	"net/http"

	"github.com/reflaxess123/obedi/app/resources"
	"github.com/reflaxess123/obedi/app/services"
	"github.com/reflaxess123/obedi/pkg/bind"
	"github.com/reflaxess123/obedi/pkg/orm"
	"github.com/reflaxess123/obedi/pkg/response"
)

type LunchController struct {
	lunches     *services.LunchService
	uploadLimit int64
}

// NewLunchController builds the lunch handlers; uploads above uploadLimit
// bytes are rejected.
func NewLunchController(lunches *services.LunchService, uploadLimit int64) *LunchController {
	return &LunchController{lunches: lunches, uploadLimit: uploadLimit}
}

// Index lists lunches: ?userId=&page=1&perPage=12.
func (c *LunchController) Index(w http.ResponseWriter, r *http.Request) {
	owner, err := queryUint(r, "userId")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	pageNo, err := queryInt(r, "page")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	perPage, err := queryInt(r, "perPage")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	page := orm.NewPage(pageNo, perPage)
	lunches, total, err := c.lunches.List(r.Context(), services.LunchFilter{OwnerID: owner}, page)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Paginated(w, resources.NewLunches(lunches), orm.NewMeta(page, total))
}

func (c *LunchController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	lunch, err := c.lunches.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewLunch(lunch))
}

func (c *LunchController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.LunchInput
	if !decode(w, r, &in) {
		return
	}
	lunch, err := c.lunches.Create(r.Context(), caller(r), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, resources.NewLunch(lunch))
}

func (c *LunchController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in services.LunchInput
	if !decode(w, r, &in) {
		return
	}
	lunch, err := c.lunches.Update(r.Context(), id, caller(r), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewLunch(lunch))
}

func (c *LunchController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := c.lunches.Delete(r.Context(), id, caller(r)); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, message{Message: "Deleted"})
}

func (c *LunchController) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in services.ImageInput
	if !decode(w, r, &in) {
		return
	}
	img, err := c.lunches.AddImage(r.Context(), id, caller(r), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, resources.NewImage(img))
}

func (c *LunchController) DestroyImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	imageID, err := idParam(r, "imageId")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := c.lunches.DeleteImage(r.Context(), id, imageID, caller(r)); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, message{Message: "Image deleted"})
}

// UploadImage accepts a multipart "file" field holding one image.
func (c *LunchController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	data, hdr, err := bind.File(w, r, "file", c.uploadLimit)
	switch {
	case errors.Is(err, bind.ErrFileMissing):
		response.Error(w, http.StatusBadRequest, "File is required")
		return
	case isTooLarge(err):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	img, err := c.lunches.UploadImage(r.Context(), id, caller(r), data, contentType)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, resources.NewImage(img))
}
