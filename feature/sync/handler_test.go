package sync_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cvsync/core/storage/mocks"
	cvsync "cvsync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(t *testing.T, svc *cvsync.Service, archive *cvsync.Archive) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, cvsync.NewFeature(svc, archive).Load(app))
	return app
}

func TestHandleRun(t *testing.T) {
	db := openDB(t)
	app := newApp(t, newService(db, leaf1()), nil)

	t.Run("DryRun", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/sync/from-cloudvision?dry_run=true", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var report cvsync.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.True(t, report.DryRun)
		assert.Equal(t, cvsync.FromCloudVision, report.Direction)
		assert.Equal(t, 4, report.Summary.Totals.Pending)
	})

	t.Run("UnknownDirection", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/sync/sideways", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleRun_LoadFailure(t *testing.T) {
	cv := leaf1()
	cv.listErr = io.ErrUnexpectedEOF
	app := newApp(t, newService(openDB(t), cv), nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/from-cloudvision", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "cloudvision")
}

func TestHandleReports(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "reports", minio.ListObjectsOptions{Prefix: "reports/to-cloudvision/", Recursive: true}).
		Return(objects(minio.ObjectInfo{Key: "reports/to-cloudvision/r9.json", LastModified: time.Now()}))
	m.On("GetObject", mock.Anything, "reports", "reports/to-cloudvision/r0.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

	archive := cvsync.NewArchive(m, archiveConfig(0), zap.NewNop())
	app := newApp(t, newService(nil, leaf1()), archive)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/reports?direction=to-cloudvision", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var infos []cvsync.ReportInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "r9", infos[0].ID)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/reports/to-cloudvision/r0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/reports?direction=up", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleReports_ArchiveDisabled(t *testing.T) {
	app := newApp(t, newService(nil, leaf1()), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/reports", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleLookup(t *testing.T) {
	app := newApp(t, newService(openDB(t), leaf1()), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/lookup/cloudvision/tag/bgp__enabled", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tag map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tag))
	assert.Equal(t, "CREATOR_TYPE_SYSTEM", tag["creatorType"])

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/lookup/nautobot/device/leaf1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "nothing synced yet")

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/lookup/netbox/device/leaf1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
