package handler

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/queue"
    "github.com/dilshan/canteen-meal-service/internal/repository"
    "github.com/dilshan/canteen-meal-service/internal/service"
    "github.com/dilshan/canteen-meal-service/internal/utils"
)

// KioskHandler speaks the ZKTeco push-protocol ("iclock") dialect the
// biometric terminals use.  The terminals poll over plain HTTP and
// expect plain-text answers; anything that is not the literal string
// they look for makes the device retry forever, so the responses here
// must stay byte-exact.
type KioskHandler struct {
    Kiosk     *service.KioskService
    JWTSecret string
    TTLMin    int
}

func NewKioskHandler(kiosk *service.KioskService, secret string, ttlMin int) *KioskHandler {
    return &KioskHandler{Kiosk: kiosk, JWTSecret: secret, TTLMin: ttlMin}
}

// Handshake handles GET /iclock/cdata. The device introduces itself
// by serial number and asks for its option block.
func (h *KioskHandler) Handshake(c echo.Context) error {
    sn := c.QueryParam("SN")
    if sn == "" {
        return c.String(http.StatusBadRequest, "ERROR: missing SN")
    }
    // Stamps of zero force the device to re-send anything buffered.
    body := "GET OPTION FROM: " + sn + "\r\n" +
        "Stamp=0\r\n" +
        "OpStamp=0\r\n" +
        "ErrorDelay=60\r\n" +
        "Delay=10\r\n" +
        "TransTimes=00:00;23:59\r\n" +
        "TransInterval=1\r\n" +
        "TransFlag=1111000000\r\n" +
        "Realtime=1\r\n" +
        "TimeZone=5:30\r\n"
    return c.String(http.StatusOK, body)
}

// KeepAlive handles GET /iclock/getrequest, the device's command
// poll. There is nothing to push back, so the answer is always OK.
func (h *KioskHandler) KeepAlive(c echo.Context) error {
    return c.String(http.StatusOK, "OK")
}

// AttendanceLog handles POST /iclock/cdata?table=ATTLOG. The body is
// one scan per line, tab-separated, PIN first. Each PIN is resolved
// to a user; suspended users are skipped but still acknowledged, the
// device does not understand partial failure.
func (h *KioskHandler) AttendanceLog(c echo.Context) error {
    sn := c.QueryParam("SN")
    if c.QueryParam("table") != "ATTLOG" {
        return c.String(http.StatusOK, "OK")
    }
    raw, err := io.ReadAll(c.Request().Body)
    if err != nil {
        return c.String(http.StatusOK, "OK")
    }

    ctx := c.Request().Context()
    handled := 0
    for _, line := range strings.Split(string(raw), "\n") {
        line = strings.TrimSpace(line)
        if line == "" {
            continue
        }
        fields := strings.Split(line, "\t")
        pin := strings.TrimSpace(fields[0])
        if pin == "" {
            continue
        }
        h.processScan(ctx, sn, pin)
        handled++
    }
    return c.String(http.StatusOK, fmt.Sprintf("OK: %d", handled))
}

func (h *KioskHandler) processScan(ctx context.Context, sn, pin string) {
    user, err := h.Kiosk.Resolve(ctx, pin)
    if err != nil {
        var susErr *service.SuspendedError
        switch {
        case errors.As(err, &susErr):
            log.Printf("kiosk %s: pin %s suspended until %s", sn, pin, susErr.Until.Format(time.RFC3339))
        case errors.Is(err, repository.ErrUserNotFound):
            log.Printf("kiosk %s: pin %s not enrolled", sn, pin)
        default:
            log.Printf("kiosk %s: pin %s lookup failed: %v", sn, pin, err)
        }
        return
    }

    token, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Role, user.SubRole, h.TTLMin)
    if err != nil {
        log.Printf("kiosk %s: token mint failed for user %d: %v", sn, user.ID, err)
        return
    }
    go service.Dispatch(context.Background(), []queue.Envelope{{
        Event:   "kiosk_login",
        Channel: "kiosk:" + sn,
        Payload: queue.KioskLoginEvent{
            UserID: user.ID,
            Name:   user.FullName(),
            Role:   user.Role,
            Token:  token.Token,
        },
        At: time.Now().UTC().Format(time.RFC3339),
    }})
}
