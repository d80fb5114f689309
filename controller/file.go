package controller

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"qchat-service/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxUploadSize = 25 << 20 // 25 MiB

// FileUpload stores multipart content in GridFS and returns the reference
// URL a client then carries in sendMessage. The real-time core only ever
// sees that reference string.
func FileUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "No file uploaded",
			"data":    nil,
		})
	}
	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "File is too large",
			"data":    nil,
		})
	}

	url, err := storeUpload(c, file)
	if err != nil {
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"url":      url,
			"filename": file.Filename,
			"size":     file.Size,
		},
	})
}

// FileDownload streams stored content back by id.
func FileDownload(c *fiber.Ctx) error {
	oid, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fileNotFound(c)
	}

	stream, err := database.GridFS.OpenDownloadStream(oid)
	if err != nil {
		return fileNotFound(c)
	}

	if meta := stream.GetFile().Metadata; meta != nil {
		var stored struct {
			ContentType string `bson:"contentType"`
		}
		if err := bson.Unmarshal(meta, &stored); err == nil && stored.ContentType != "" {
			c.Set("Content-Type", stored.ContentType)
		}
	}

	data, err := io.ReadAll(stream)
	stream.Close()
	if err != nil {
		return internalError(c)
	}

	return c.Send(data)
}

// storeUpload writes one multipart file into GridFS, keeping the original
// filename so attachment classification by extension keeps working.
func storeUpload(c *fiber.Ctx, header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	uploader := ""
	if user, err := currentUser(c); err == nil {
		uploader = user.ID.Hex()
	}

	id, err := database.GridFS.UploadFromStream(
		header.Filename,
		src,
		options.GridFSUpload().SetMetadata(bson.M{
			"contentType": header.Header.Get("Content-Type"),
			"uploader":    uploader,
		}),
	)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/v1/file/%s/%s", id.Hex(), url.PathEscape(header.Filename)), nil
}

func fileNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "File not found",
		"data":    nil,
	})
}
