package controllers_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/models"
	"github.com/PattyWambere/Your-Commissioner/pkg/config"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"
	"github.com/PattyWambere/Your-Commissioner/routes"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	router  *gin.Engine
	db      *gorm.DB
	store   *store.Store
	gateway *realtime.Gateway
}

func buildTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetRateLimitConfig(time.Second, 1000)

	db, err := gorm.Open(sqlite.Open("file:app"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyMedia{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.New(db)
	revocations := tokenstore.NewStore()
	auth := middleware.NewAuthenticator(revocations)
	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(zerolog.Nop())
	registry.Set(gateway)
	messenger := svc.NewMessenger(st, registry, zerolog.Nop())

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		Store:       st,
		Messenger:   messenger,
		Gateway:     gateway,
		Auth:        auth,
		Revocations: revocations,
		Logger:      zerolog.Nop(),
	})
	return &testApp{router: r, db: db, store: st, gateway: gateway}
}

func (a *testApp) seedUser(t *testing.T, id uint, name, email, role string) {
	t.Helper()
	u := models.User{Model: gorm.Model{ID: id}, Name: name, Email: email, Role: role}
	if err := a.db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func (a *testApp) seedProperty(t *testing.T, id, commissionerID uint, title string) {
	t.Helper()
	p := models.Property{Model: gorm.Model{ID: id}, CommissionerID: commissionerID, Title: title}
	if err := a.db.Create(&p).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	m := models.PropertyMedia{PropertyID: id, URL: "/img/lead.jpg"}
	if err := a.db.Create(&m).Error; err != nil {
		t.Fatalf("seed media: %v", err)
	}
}

func mintToken(t *testing.T, userID uint, email, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": strconv.FormatUint(uint64(userID), 10),
		"email":  email,
		"role":   role,
		"jti":    uuid.NewString(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}
