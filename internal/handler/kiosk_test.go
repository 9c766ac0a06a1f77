package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/repository"
    "github.com/dilshan/canteen-meal-service/internal/service"
)

type stubUsers struct {
    byBio map[string]*model.User
}

func (s *stubUsers) GetByBioID(ctx context.Context, bioID string) (*model.User, error) {
    u, ok := s.byBio[bioID]
    if !ok {
        return nil, repository.ErrUserNotFound
    }
    cp := *u
    return &cp, nil
}

func (s *stubUsers) ClearSuspension(ctx context.Context, userID uint64) error {
    for _, u := range s.byBio {
        if u.ID == userID {
            u.SuspendedUntil = nil
        }
    }
    return nil
}

func newKioskHandler(users *stubUsers) *KioskHandler {
    now := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)
    svc := service.NewKioskService(users, clock.Fixed{T: now})
    return NewKioskHandler(svc, "secret", 5)
}

func TestHandshakeEchoesSerialNumber(t *testing.T) {
    h := newKioskHandler(&stubUsers{})
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/iclock/cdata?SN=ZK1234&options=all", nil)
    rec := httptest.NewRecorder()

    require.NoError(t, h.Handshake(e.NewContext(req, rec)))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "GET OPTION FROM: ZK1234")
    assert.Contains(t, rec.Body.String(), "Stamp=0")
}

func TestHandshakeRequiresSerialNumber(t *testing.T) {
    h := newKioskHandler(&stubUsers{})
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/iclock/cdata", nil)
    rec := httptest.NewRecorder()

    require.NoError(t, h.Handshake(e.NewContext(req, rec)))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeepAliveAnswersOK(t *testing.T) {
    h := newKioskHandler(&stubUsers{})
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/iclock/getrequest?SN=ZK1234", nil)
    rec := httptest.NewRecorder()

    require.NoError(t, h.KeepAlive(e.NewContext(req, rec)))
    assert.Equal(t, "OK", rec.Body.String())
}

func TestAttendanceLogCountsScans(t *testing.T) {
    bio := "1042"
    users := &stubUsers{byBio: map[string]*model.User{
        bio: {ID: 1, FirstName: "K", LastName: "S", Role: model.RoleEmployee, BioID: &bio},
    }}
    h := newKioskHandler(users)
    e := echo.New()

    body := "1042\t2026-03-10 13:00:05\t0\t1\n" +
        "\n" +
        "9999\t2026-03-10 13:00:09\t0\t1\n"
    req := httptest.NewRequest(http.MethodPost, "/iclock/cdata?SN=ZK1234&table=ATTLOG", strings.NewReader(body))
    rec := httptest.NewRecorder()

    require.NoError(t, h.AttendanceLog(e.NewContext(req, rec)))

    // Both non-empty lines are acknowledged, enrolled or not; the
    // terminal would otherwise retry the batch forever.
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "OK: 2", rec.Body.String())
}

func TestAttendanceLogIgnoresOtherTables(t *testing.T) {
    h := newKioskHandler(&stubUsers{})
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/iclock/cdata?SN=ZK1234&table=OPERLOG", strings.NewReader("junk"))
    rec := httptest.NewRecorder()

    require.NoError(t, h.AttendanceLog(e.NewContext(req, rec)))
    assert.Equal(t, "OK", rec.Body.String())
}
