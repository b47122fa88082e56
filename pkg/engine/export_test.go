package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestEngine(t)
	src.GoToScene("b")
	src.SetCounter("gold", 12)
	src.AddToInventory("torch", 1)

	data, err := src.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(string(data), "\"gameData\"") {
		t.Error("Export document missing gameData")
	}
	if !json.Valid(data) {
		t.Fatal("Export is not valid JSON")
	}

	dst := New(nil, WithLogger(testLogger()))
	defer dst.Close()

	imported := ""
	dst.On(EventGameDataImported, func(p any) { imported = p.(string) })

	if err := dst.ImportJSON(data); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if imported != "Test Adventure" {
		t.Errorf("gameDataImported payload = %q", imported)
	}
	if dst.Story().Title != "Test Adventure" {
		t.Errorf("Title = %q", dst.Story().Title)
	}

	// Importing an export yields a freshly reset playthrough, not the
	// exporting session's progress.
	gs := dst.Snapshot()
	if gs.CurrentScene != "a" {
		t.Errorf("CurrentScene = %q, expected the start scene", gs.CurrentScene)
	}
	if dst.GetCounter("gold") != 0 || dst.HasItem("torch", 1) {
		t.Error("Play state leaked through the export document")
	}
	if len(gs.History) != 0 {
		t.Errorf("History = %v", gs.History)
	}
}

func TestImportGameData_WithoutInitialState(t *testing.T) {
	e := newTestEngine(t)
	e.MakeChoice(0)

	doc := &GameDocument{GameData: e.Story()}
	if err := e.ImportGameData(doc); err != nil {
		t.Fatalf("ImportGameData: %v", err)
	}

	gs := e.Snapshot()
	if gs.CurrentScene != "a" {
		t.Errorf("CurrentScene = %q, expected the start scene", gs.CurrentScene)
	}
	if len(gs.Inventory) != 0 {
		t.Error("Import without initial state starts empty")
	}
	if _, ok := gs.Flags["enteredA"]; ok {
		t.Error("Import must not run the start scene's onEnter")
	}
}

func TestImportGameData_IsolatesTheDocument(t *testing.T) {
	e := newTestEngine(t)

	st := testStory()
	st.Title = "Mutable"
	if err := e.ImportGameData(&GameDocument{GameData: st}); err != nil {
		t.Fatalf("ImportGameData: %v", err)
	}

	st.Title = "Changed after import"
	if e.Story().Title != "Mutable" {
		t.Error("Imported story must be a copy of the document")
	}
}

func TestImportGameData_RejectsBadDocuments(t *testing.T) {
	e := newTestEngine(t)
	e.GoToScene("b")

	importErrors := 0
	e.On(EventImportError, func(any) { importErrors++ })

	broken := story.New("Broken")
	broken.StartScene = "nowhere"

	cases := []*GameDocument{
		nil,
		{},
		{GameData: broken},
	}
	for i, doc := range cases {
		if err := e.ImportGameData(doc); err == nil {
			t.Errorf("Case %d: expected rejection", i)
		}
	}
	if importErrors != len(cases) {
		t.Errorf("importError events = %d", importErrors)
	}

	// Rejection leaves the running game untouched.
	if e.Story().Title != "Test Adventure" || e.CurrentSceneID() != "b" {
		t.Error("Rejected import must not disturb the session")
	}
}

func TestImportJSON_Malformed(t *testing.T) {
	e := newTestEngine(t)

	importErrors := 0
	e.On(EventImportError, func(any) { importErrors++ })

	if err := e.ImportJSON([]byte("{not json")); err == nil {
		t.Error("Expected a parse error")
	}
	if importErrors != 1 {
		t.Errorf("importError events = %d", importErrors)
	}
}

func TestImportGameData_ClosedEngine(t *testing.T) {
	e := New(testStory(), WithLogger(testLogger()))
	e.Close()

	if err := e.ImportGameData(&GameDocument{GameData: testStory()}); err == nil {
		t.Error("A closed engine must refuse imports")
	}
}

func TestExportGameData_FreshTemplate(t *testing.T) {
	e := newTestEngine(t)
	e.GoToScene("b")
	e.SetCounter("gold", 1)
	e.AddToInventory("torch", 1)

	doc := e.ExportGameData()
	if doc.GameData == nil || doc.InitialState == nil {
		t.Fatal("Document incomplete")
	}

	// The document carries the template a new session starts from, not
	// this session's progress.
	gs := doc.InitialState
	if gs.CurrentScene != "a" {
		t.Errorf("Template scene = %q, want the start scene", gs.CurrentScene)
	}
	if len(gs.Inventory) != 0 || len(gs.Flags) != 0 || len(gs.Counters) != 0 || len(gs.History) != 0 {
		t.Errorf("Template is not empty: inventory=%v flags=%v counters=%v history=%v",
			gs.Inventory, gs.Flags, gs.Counters, gs.History)
	}

	doc.InitialState.Counters["gold"] = 99
	if e.GetCounter("gold") != 1 {
		t.Error("Export document must not share state with the engine")
	}
}

func TestExportJSON_EmitsTemplate(t *testing.T) {
	e := newTestEngine(t)
	e.GoToScene("b")

	data, err := e.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var doc struct {
		InitialState state.GameState `json:"initialState"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.InitialState.CurrentScene != "a" {
		t.Errorf("initialState scene = %q", doc.InitialState.CurrentScene)
	}
	if len(doc.InitialState.Inventory) != 0 || len(doc.InitialState.History) != 0 {
		t.Errorf("initialState carries play state: inventory=%v history=%v",
			doc.InitialState.Inventory, doc.InitialState.History)
	}
}
