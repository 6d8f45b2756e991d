package middleware

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"hikayat/internal/config"
	handlers "hikayat/internal/handler"
	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/notice"
	"hikayat/internal/service"
)

const (
	ProfileCookie   = "hikayat_profile"
	RequestIDHeader = "X-Request-ID"
	WarningHeader   = "X-Storage-Warning"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware keeps an incoming X-Request-ID or generates one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = xid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder remembers the status and adds storage warnings before the header is sent.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	notices *notice.Notices
	wrote   bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.wrote {
		return
	}
	s.wrote = true
	s.status = status

	if s.notices != nil {
		for _, msg := range s.notices.Messages() {
			s.Header().Add(WarningHeader, msg)
		}
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wrote {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// NoticeMiddleware collects storage warnings raised while serving the request
// and reports them in the X-Storage-Warning header.
func NoticeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, notices := notice.With(r.Context())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK, notices: notices}
		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}

func LoggingMiddleware(log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "запрос обработан",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", RequestIDFrom(r.Context()),
			)
		})
	}
}

// CORSMiddleware allows credentials only for the listed origins. Any other
// origin gets a wildcard without credentials.
func CORSMiddleware(origins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(origins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", WarningHeader+", "+RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// service endpoints that do not belong to a browser profile
var profilelessPaths = []string{"/health", "/stats"}

// ProfileMiddleware resolves the browser profile from its signed cookie.
// A missing or invalid cookie starts a new, empty profile.
func ProfileMiddleware(store localstore.Store, tokens service.ProfileTokens, cfg *config.Config, log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range profilelessPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			var profileID string

			if cookie, err := r.Cookie(ProfileCookie); err == nil {
				id, err := tokens.Parse(cookie.Value)
				if err != nil {
					log.Debug(r.Context(), "недействительный cookie профиля", "error", err)
				}
				profileID = id
			}

			if profileID == "" {
				id, token, err := tokens.Issue()
				if err != nil {
					log.Error(r.Context(), "ошибка выдачи профиля", "error", err)
					handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
					return
				}
				profileID = id

				cookie := &http.Cookie{
					Name:     ProfileCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.ProfileCookieSecure,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.ProfileTokenDuration > 0 {
					cookie.MaxAge = int(cfg.ProfileTokenDuration.Seconds())
				} else {
					cookie.Expires = time.Now().AddDate(10, 0, 0)
				}
				http.SetCookie(w, cookie)
			}

			ctx := localstore.WithProfile(r.Context(), store.Profile(profileID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RouteGuard sends anonymous visitors of a protected page to the login page,
// remembering where they were going. Other pages pass through.
func RouteGuard(auth service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsGuardedPage(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			profile, ok := localstore.ProfileFrom(r.Context())
			if !ok {
				handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			_, authenticated, err := auth.CurrentSession(r.Context(), profile)
			if err != nil {
				handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !authenticated {
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func LoginURL(redirect string) string {
	return "/login?redirect=" + url.QueryEscape(redirect)
}

// RequireSession answers 401 for anonymous calls to protected API routes.
func RequireSession(auth service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := localstore.ProfileFrom(r.Context())
			if !ok {
				handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			_, authenticated, err := auth.CurrentSession(r.Context(), profile)
			if err != nil {
				handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !authenticated {
				handlers.WriteError(w, "login required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsGuardedPage reports whether path is a page that requires login.
func IsGuardedPage(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/write", "/profile", "/drafts", "/stories/my", "/writers":
		return true
	}
	return false
}

func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
