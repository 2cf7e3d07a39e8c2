package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/miradi/apps/api/echo"
	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/core/board"
	"github.com/trezcool/miradi/core/project"
	"github.com/trezcool/miradi/core/student"
	emailsvc "github.com/trezcool/miradi/services/email"
	logsvc "github.com/trezcool/miradi/services/logger"
	inmemdb "github.com/trezcool/miradi/storage/database/inmem"
)

var (
	refTime = time.Date(2021, time.February, 1, 9, 0, 0, 0, time.UTC)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errUpstream     = httpErr{Error: "an external service failed; please retry later"}
)

type plannerStub struct {
	plan board.SprintPlan
	err  error
}

func (p *plannerStub) GenerateSprintPlan(context.Context, board.PlanRequest) (board.SprintPlan, error) {
	if p.err != nil {
		return board.SprintPlan{}, p.err
	}
	return p.plan, nil
}

type providerStub struct {
	res   board.ProviderResult
	err   error
	stats board.Stats
}

func (p *providerStub) CreateBoard(context.Context, board.ProviderBoard) (board.ProviderResult, error) {
	if p.err != nil {
		return board.ProviderResult{}, p.err
	}
	return p.res, nil
}

func (p *providerStub) GetBoardStats(context.Context, string) (board.Stats, error) {
	return p.stats, p.err
}

type testEnv struct {
	db       *inmemdb.DB
	planner  *plannerStub
	provider *providerStub
	conf     *core.Config
	boardSvc board.ServiceInterface
}

func setup(t *testing.T, env *testEnv) *echoapi.Server {
	t.Helper()

	if env.db == nil {
		env.db = inmemdb.Open()
	}
	if env.planner == nil {
		env.planner = &plannerStub{}
	}
	if env.provider == nil {
		env.provider = &providerStub{res: board.ProviderResult{ID: "B1", URL: "https://x/B1"}}
	}
	if env.conf == nil {
		env.conf = core.NewConfig()
	}
	env.conf.Debug = false
	env.conf.TestMode = true

	board.NowFunc = func() time.Time { return refTime }
	t.Cleanup(func() { board.NowFunc = time.Now })
	emailsvc.ClearSentMessages()

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	env.boardSvc = board.NewService(
		inmemdb.NewBoardRepository(env.db),
		inmemdb.NewProjectRepository(env.db),
		inmemdb.NewStudentRepository(env.db),
		env.planner,
		env.provider,
		emailsvc.NewConsoleServiceMock(env.conf),
		logger,
		env.conf,
	)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       env.conf,
		Logger:     logger,
		BoardSvc:   env.boardSvc,
		ProjectSvc: project.NewService(inmemdb.NewProjectRepository(env.db)),
		StudentSvc: student.NewService(inmemdb.NewStudentRepository(env.db)),
		Validate:   validate,
		Translator: translator,
	})
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, email string, isAdmin bool) string {
	claims := echoapi.NewClaims(conf, email, isAdmin)
	token, err := echoapi.GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
