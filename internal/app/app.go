package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"inboxguardian/internal/analysis"
	"inboxguardian/internal/config"
	"inboxguardian/internal/credential"
	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
	"inboxguardian/internal/provider"
	"inboxguardian/internal/store"
)

// Model is the Bubble Tea application. Update is the single thread of
// control: commands run in goroutines but every state mutation happens here,
// through the coordinator.
type Model struct {
	cfg       *config.Config
	configDir string
	tokens    *store.CredentialStore
	analyzer  *analysis.Analyzer

	coord   *Coordinator
	mailbox provider.Mailbox
	account string

	Err    error
	status string

	// Auth screen
	providerCursor int // 0 gmail, 1 yahoo
	authFocus      int // 0 email, 1 password
	emailInput     textinput.Model
	passwordInput  textinput.Model
	codeInput      textinput.Model
	authURL        string
	uiEvents       chan interface{}
	userResponses  chan string

	// Listing
	groupsList     list.Model
	sortKey        grouping.SortKey
	filterInput    textinput.Model
	filtering      bool
	filterTerm     string
	selectedGroups map[string]bool

	// Group detail
	emailsList     list.Model
	selectedEmails map[string]bool

	// Email detail
	bodyViewport   viewport.Model
	detail         *model.EmailDetail
	detailAnalysis *model.DetailAnalysis

	// Completed
	lastOutcome model.TrashOutcome

	spin          spinner.Model
	width, height int
	program       *tea.Program
}

func New(cfg *config.Config, tokens *store.CredentialStore, analyzer *analysis.Analyzer, configDir string) *Model {
	email := textinput.New()
	email.Placeholder = "you@yahoo.com"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "app password"
	password.EchoMode = textinput.EchoPassword

	code := textinput.New()
	code.Placeholder = "Paste auth code here"

	filter := textinput.New()
	filter.Placeholder = "filter by sender"
	filter.Prompt = "/"

	gl := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	gl.SetFilteringEnabled(false)
	gl.KeyMap.Quit.SetKeys("q")

	el := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	el.SetFilteringEnabled(false)
	el.KeyMap.Quit.SetKeys("q")

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		cfg:            cfg,
		configDir:      configDir,
		tokens:         tokens,
		analyzer:       analyzer,
		coord:          NewCoordinator(),
		uiEvents:       make(chan interface{}),
		userResponses:  make(chan string),
		emailInput:     email,
		passwordInput:  password,
		codeInput:      code,
		filterInput:    filter,
		groupsList:     gl,
		emailsList:     el,
		sortKey:        grouping.SortByCount,
		selectedGroups: make(map[string]bool),
		selectedEmails: make(map[string]bool),
		bodyViewport:   viewport.New(0, 0),
		spin:           sp,
	}

	// Preselect the provider used last time; a Yahoo marker also prefills
	// the address so a cached app password can sign in with one keystroke.
	if marker, err := tokens.GetLastLogin(context.Background()); err == nil {
		if addr, ok := strings.CutPrefix(marker, "yahoo:"); ok && addr != "" {
			m.providerCursor = 1
			m.emailInput.SetValue(addr)
		}
	}
	return m
}

// SetProgram stores the tea.Program so command goroutines can report
// progress back into the Update loop.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

func (m *Model) send(msg tea.Msg) {
	if m.program != nil {
		m.program.Send(msg)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listH := msg.Height - 4
		m.groupsList.SetSize(msg.Width, listH)
		m.emailsList.SetSize(msg.Width, listH)
		m.bodyViewport.Width = msg.Width
		m.bodyViewport.Height = msg.Height - 3
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.coord.View() == ViewConnecting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case oauthURLMsg:
		m.authURL = string(msg)
		m.codeInput.Focus()
		m.coord.SetView(ViewUnauthenticated)
		return m, textinput.Blink

	case connectResultMsg:
		return m.onConnectResult(msg)

	case fetchCompleteMsg:
		return m.onFetchComplete(msg)

	case analysesMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Analysis failed: %v", msg.err)
			m.coord.MergeAnalyses(msg.results)
			m.refreshLists()
			return m, clearStatusAfter(3 * time.Second)
		}
		added := m.coord.MergeAnalyses(msg.results)
		m.refreshLists()
		if added == 0 {
			m.status = "Already analyzed"
		} else {
			m.status = fmt.Sprintf("Analyzed %d email(s)", added)
		}
		return m, clearStatusAfter(2 * time.Second)

	case groupAnalysisMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Analysis failed: %v", msg.err)
			return m, clearStatusAfter(3 * time.Second)
		}
		// The group may have been trashed while analysis ran; a miss is fine.
		if m.coord.SetGroupAnalysis(msg.senderEmail, msg.analysis) {
			m.refreshLists()
			m.status = fmt.Sprintf("%s: %s", msg.senderEmail, msg.analysis.Recommendation)
		}
		return m, clearStatusAfter(3 * time.Second)

	case searchResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Search failed: %v", msg.err)
			return m, clearStatusAfter(3 * time.Second)
		}
		added := m.coord.MergeEmails(msg.emails)
		m.refreshLists()
		if added == 0 {
			m.status = "No new emails from this sender"
		} else {
			m.status = fmt.Sprintf("Loaded %d more email(s) from %s", added, msg.senderEmail)
		}
		return m, clearStatusAfter(3 * time.Second)

	case detailFetchedMsg:
		return m.onDetailFetched(msg)

	case detailAnalysisMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Analysis failed: %v", msg.err)
			return m, clearStatusAfter(3 * time.Second)
		}
		if m.coord.View() == ViewEmailDetail && m.coord.CurrentEmailID() == msg.emailID {
			m.detailAnalysis = msg.analysis
			m.renderDetail()
			m.status = ""
		}
		return m, nil

	case trashResultMsg:
		return m.onTrashResult(msg)

	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	return m.updateActiveSubmodel(msg)
}

func (m *Model) onConnectResult(msg connectResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Could not connect: %v", msg.err)
		m.authURL = ""
		m.coord.SetView(ViewUnauthenticated)
		return m, nil
	}
	m.mailbox = msg.mailbox
	m.account = msg.account
	m.authURL = ""
	m.status = fmt.Sprintf("Connected as %s, fetching unread mail...", msg.account)
	m.coord.SetView(ViewConnecting)
	return m, tea.Batch(m.spin.Tick, m.fetchUnreadCmd())
}

func (m *Model) onFetchComplete(msg fetchCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Could not fetch mail: %v", msg.err)
		m.mailbox = nil
		m.account = ""
		m.coord.Reset()
		return m, nil
	}
	m.coord.SetGroups(grouping.GroupBySender(msg.emails))
	m.coord.SetView(ViewListing)
	m.selectedGroups = make(map[string]bool)
	m.refreshLists()
	m.status = fmt.Sprintf("%d unread emails from %d senders", m.coord.TotalEmails(), m.coord.GroupCount())
	return m, clearStatusAfter(3 * time.Second)
}

func (m *Model) onDetailFetched(msg detailFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Failed to load email: %v", msg.err)
		return m, clearStatusAfter(3 * time.Second)
	}
	// Discard the result if the user navigated away or the email was
	// trashed while the fetch was in flight.
	if m.coord.View() != ViewEmailDetail || m.coord.CurrentEmailID() != msg.detail.ID {
		return m, nil
	}
	m.detail = &msg.detail
	m.detailAnalysis = nil
	m.renderDetail()
	m.status = ""
	return m, nil
}

func (m *Model) onTrashResult(msg trashResultMsg) (tea.Model, tea.Cmd) {
	removed := m.coord.ApplyTrashOutcome(msg.requested, msg.outcome)
	for _, id := range removed {
		delete(m.selectedEmails, id)
	}
	m.pruneGroupSelection()
	m.lastOutcome = msg.outcome
	m.refreshLists()

	out := msg.outcome
	switch {
	case out.TrashedCount == 0 && len(out.FailedIDs) == 0:
		m.status = "Nothing to trash"
	case out.Success:
		m.status = fmt.Sprintf("Trashed %d email(s). Press c for summary.", out.TrashedCount)
	case out.TrashedCount > 0:
		m.status = fmt.Sprintf("Trashed %d email(s), %d failed and kept in place", out.TrashedCount, len(out.FailedIDs))
	default:
		reason := out.ErrorMessage
		if reason == "" {
			reason = "all attempts failed"
		}
		m.status = fmt.Sprintf("Trash failed: %s", reason)
	}
	return m, clearStatusAfter(5 * time.Second)
}

func (m *Model) updateActiveSubmodel(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.coord.View() {
	case ViewUnauthenticated:
		return m, m.updateAuthInputs(msg)
	case ViewListing:
		if m.filtering {
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
		m.groupsList, cmd = m.groupsList.Update(msg)
	case ViewGroupDetail:
		m.emailsList, cmd = m.emailsList.Update(msg)
	case ViewEmailDetail:
		m.bodyViewport, cmd = m.bodyViewport.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateAuthInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.authURL != "" {
		m.codeInput, cmd = m.codeInput.Update(msg)
		return cmd
	}
	m.emailInput, cmd = m.emailInput.Update(msg)
	cmds = append(cmds, cmd)
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.coord.View() {
	case ViewUnauthenticated:
		return m.handleAuthKey(msg)
	case ViewConnecting:
		return m, nil
	case ViewListing:
		return m.handleListingKey(msg)
	case ViewGroupDetail:
		return m.handleGroupKey(msg)
	case ViewEmailDetail:
		return m.handleDetailKey(msg)
	case ViewCompleted:
		m.coord.Back()
		m.refreshLists()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Waiting for the pasted OAuth code.
	if m.authURL != "" {
		if key == "enter" {
			code := strings.TrimSpace(m.codeInput.Value())
			m.codeInput.Reset()
			if code == "" {
				return m, nil
			}
			m.status = "Completing sign-in..."
			m.coord.SetView(ViewConnecting)
			return m, tea.Batch(m.spin.Tick, m.submitAuthCodeCmd(code))
		}
		var cmd tea.Cmd
		m.codeInput, cmd = m.codeInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "tab", "left", "right":
		m.providerCursor = 1 - m.providerCursor
		m.status = ""
		return m, nil
	case "up", "down":
		if m.providerCursor == 1 {
			m.authFocus = 1 - m.authFocus
			if m.authFocus == 0 {
				m.emailInput.Focus()
				m.passwordInput.Blur()
			} else {
				m.emailInput.Blur()
				m.passwordInput.Focus()
			}
		}
		return m, textinput.Blink
	case "enter":
		return m.startConnect()
	case "esc":
		return m, tea.Quit
	}

	return m, m.updateAuthInputs(msg)
}

func (m *Model) startConnect() (tea.Model, tea.Cmd) {
	if m.providerCursor == 0 {
		m.status = "Signing in to Google..."
		m.coord.SetView(ViewConnecting)
		return m, tea.Batch(m.spin.Tick, m.connectGmailCmd())
	}

	email := strings.TrimSpace(m.emailInput.Value())
	if email == "" || !strings.Contains(email, "@") {
		m.status = "Enter your Yahoo address first"
		return m, nil
	}
	password := strings.TrimSpace(m.passwordInput.Value())
	if password == "" {
		cached, err := credential.LoadAppPassword(email)
		if err != nil || cached == "" {
			m.status = "Enter your app password (it will be cached for next time)"
			return m, nil
		}
		password = cached
		m.status = "Using cached app password..."
	}
	m.coord.SetView(ViewConnecting)
	return m, tea.Batch(m.spin.Tick, m.connectYahooCmd(email, password))
}

func (m *Model) handleListingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.filtering {
		switch key {
		case "esc":
			m.filtering = false
			m.filterTerm = ""
			m.filterInput.Reset()
			m.refreshLists()
			return m, nil
		case "enter":
			m.filtering = false
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.filterTerm = m.filterInput.Value()
		m.refreshLists()
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "s":
		m.sortKey = m.sortKey.Next()
		m.refreshLists()
		m.status = fmt.Sprintf("Sorted by %s", m.sortKey)
		return m, clearStatusAfter(2 * time.Second)
	case " ":
		if g, ok := m.cursorGroup(); ok {
			m.selectedGroups[g.SenderEmail] = !m.selectedGroups[g.SenderEmail]
			m.refreshLists()
			m.groupsList.CursorDown()
		}
		return m, nil
	case "enter":
		if g, ok := m.cursorGroup(); ok && m.coord.OpenGroup(g.SenderEmail) {
			m.selectedEmails = make(map[string]bool)
			m.refreshLists()
		}
		return m, nil
	case "a":
		if g, ok := m.cursorGroup(); ok {
			if g.Analysis != nil {
				m.status = "Group already analyzed"
				return m, clearStatusAfter(2 * time.Second)
			}
			m.status = fmt.Sprintf("Analyzing %s...", g.SenderName)
			return m, m.analyzeGroupCmd(g)
		}
		return m, nil
	case "#":
		ids := m.listingTrashTargets()
		if len(ids) == 0 {
			return m, nil
		}
		m.status = fmt.Sprintf("Trashing %d email(s)...", len(ids))
		return m, m.trashCmd(ids)
	case "r":
		if m.mailbox == nil {
			return m, nil
		}
		m.status = "Refreshing..."
		m.coord.SetView(ViewConnecting)
		return m, tea.Batch(m.spin.Tick, m.refreshCmd())
	case "c":
		if m.lastOutcome.TrashedCount > 0 {
			m.coord.SetView(ViewCompleted)
		}
		return m, nil
	case "L":
		return m.logout()
	}

	var cmd tea.Cmd
	m.groupsList, cmd = m.groupsList.Update(msg)
	return m, cmd
}

func (m *Model) handleGroupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		m.coord.Back()
		m.selectedEmails = make(map[string]bool)
		m.refreshLists()
		return m, nil
	case "enter":
		if e, ok := m.cursorEmail(); ok && m.coord.OpenEmail(e.ID) {
			m.detail = nil
			m.detailAnalysis = nil
			m.status = "Loading email..."
			return m, m.fetchDetailCmd(e)
		}
		return m, nil
	case " ":
		if e, ok := m.cursorEmail(); ok {
			m.selectedEmails[e.ID] = !m.selectedEmails[e.ID]
			m.refreshLists()
			m.emailsList.CursorDown()
		}
		return m, nil
	case "a":
		// Analyze everything still unanalyzed in this group; targets are
		// resolved now, against live state, not when the view was opened.
		g, ok := m.coord.CurrentGroup()
		if !ok {
			return m, nil
		}
		pending := m.coord.UncachedIDs(emailIDs(g.Emails))
		if len(pending) == 0 {
			m.status = "All emails in this group are analyzed"
			return m, clearStatusAfter(2 * time.Second)
		}
		m.status = fmt.Sprintf("Analyzing %d email(s)...", len(pending))
		return m, m.analyzeEmailsCmd(emailsByID(g.Emails, pending))
	case "A":
		if g, ok := m.coord.CurrentGroup(); ok {
			if g.Analysis != nil {
				m.status = "Group already analyzed"
				return m, clearStatusAfter(2 * time.Second)
			}
			m.status = fmt.Sprintf("Analyzing %s...", g.SenderName)
			return m, m.analyzeGroupCmd(g)
		}
		return m, nil
	case "m":
		if g, ok := m.coord.CurrentGroup(); ok {
			m.status = fmt.Sprintf("Searching all mail from %s...", g.SenderEmail)
			return m, m.searchBySenderCmd(g.SenderEmail)
		}
		return m, nil
	case "#":
		ids := m.groupTrashTargets()
		if len(ids) == 0 {
			return m, nil
		}
		m.status = fmt.Sprintf("Trashing %d email(s)...", len(ids))
		return m, m.trashCmd(ids)
	}

	var cmd tea.Cmd
	m.emailsList, cmd = m.emailsList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.coord.Back()
		m.detail = nil
		m.detailAnalysis = nil
		m.refreshLists()
		return m, nil
	case "a":
		if m.detail == nil {
			return m, nil
		}
		if m.detailAnalysis != nil {
			m.status = "Already analyzed"
			return m, clearStatusAfter(2 * time.Second)
		}
		m.status = "Analyzing email..."
		return m, m.analyzeDetailCmd(*m.detail)
	case "#":
		id := m.coord.CurrentEmailID()
		if id == "" {
			return m, nil
		}
		m.status = "Trashing email..."
		return m, m.trashCmd([]string{id})
	}

	var cmd tea.Cmd
	m.bodyViewport, cmd = m.bodyViewport.Update(msg)
	return m, cmd
}

func (m *Model) logout() (tea.Model, tea.Cmd) {
	cmd := m.disconnectCmd()
	signedOut := "Signed out"
	if m.mailbox != nil && m.mailbox.Kind() == provider.KindYahoo && m.account != "" {
		// Signing out is the explicit "forget this account" gesture; the
		// cached app password goes with it.
		if err := credential.DeleteAppPassword(m.account); err != nil {
			signedOut = fmt.Sprintf("Signed out, but could not remove cached app password: %v", err)
		}
	}
	m.mailbox = nil
	m.account = ""
	m.coord.Reset()
	m.selectedGroups = make(map[string]bool)
	m.selectedEmails = make(map[string]bool)
	m.lastOutcome = model.TrashOutcome{}
	m.detail = nil
	m.detailAnalysis = nil
	m.filterTerm = ""
	m.filtering = false
	m.filterInput.Reset()
	m.passwordInput.Reset()
	m.status = signedOut
	return m, cmd
}

// listingTrashTargets resolves the id set for a trash from the listing:
// every email of every selected group, or of the cursor group when nothing
// is selected.
func (m *Model) listingTrashTargets() []string {
	var ids []string
	if len(m.selectedGroups) > 0 {
		for _, g := range m.coord.Groups() {
			if m.selectedGroups[g.SenderEmail] {
				ids = append(ids, emailIDs(g.Emails)...)
			}
		}
		return ids
	}
	if g, ok := m.cursorGroup(); ok {
		ids = emailIDs(g.Emails)
	}
	return ids
}

// groupTrashTargets resolves selected email ids within the open group, or
// the cursor email when nothing is selected.
func (m *Model) groupTrashTargets() []string {
	g, ok := m.coord.CurrentGroup()
	if !ok {
		return nil
	}
	if len(m.selectedEmails) > 0 {
		var ids []string
		for _, e := range g.Emails {
			if m.selectedEmails[e.ID] {
				ids = append(ids, e.ID)
			}
		}
		return ids
	}
	if e, ok := m.cursorEmail(); ok {
		return []string{e.ID}
	}
	return nil
}

// cursorGroup re-resolves the highlighted group against the coordinator so
// a stale list row can never target a removed group.
func (m *Model) cursorGroup() (model.SenderGroup, bool) {
	item := m.groupsList.SelectedItem()
	if item == nil {
		return model.SenderGroup{}, false
	}
	gi, ok := item.(groupItem)
	if !ok {
		return model.SenderGroup{}, false
	}
	return m.coord.Group(gi.SenderEmail)
}

func (m *Model) cursorEmail() (model.Email, bool) {
	item := m.emailsList.SelectedItem()
	if item == nil {
		return model.Email{}, false
	}
	ei, ok := item.(emailItem)
	if !ok {
		return model.Email{}, false
	}
	g, gok := m.coord.CurrentGroup()
	if !gok {
		return model.Email{}, false
	}
	for _, e := range g.Emails {
		if e.ID == ei.ID {
			return e, true
		}
	}
	return model.Email{}, false
}

func (m *Model) pruneGroupSelection() {
	live := make(map[string]bool)
	for _, g := range m.coord.Groups() {
		live[g.SenderEmail] = true
	}
	for key := range m.selectedGroups {
		if !live[key] {
			delete(m.selectedGroups, key)
		}
	}
}

// refreshLists rebuilds the visible projections from the canonical state.
func (m *Model) refreshLists() {
	groups := grouping.SortGroups(grouping.FilterGroups(m.coord.Groups(), m.filterTerm), m.sortKey)
	items := make([]list.Item, len(groups))
	for i, g := range groups {
		items[i] = groupItem{SenderGroup: g, selected: m.selectedGroups[g.SenderEmail]}
	}
	m.groupsList.SetItems(items)
	m.groupsList.Title = fmt.Sprintf("%s · %d senders, %d unread", m.mailboxTitle(), len(groups), m.coord.TotalEmails())

	if g, ok := m.coord.CurrentGroup(); ok {
		emails := make([]model.Email, len(g.Emails))
		copy(emails, g.Emails)
		sortEmailsNewestFirst(emails)
		eitems := make([]list.Item, len(emails))
		for i, e := range emails {
			item := emailItem{Email: e, selected: m.selectedEmails[e.ID]}
			if r, ok := m.coord.Analysis(e.ID); ok {
				item.analysis = &r
			}
			eitems[i] = item
		}
		m.emailsList.SetItems(eitems)
		m.emailsList.Title = groupTitle(g)
	}
}

func (m *Model) renderDetail() {
	if m.detail == nil {
		return
	}
	m.bodyViewport.SetContent(detailContent(*m.detail, m.detailAnalysis))
	m.bodyViewport.GotoTop()
}

func (m *Model) mailboxTitle() string {
	if m.mailbox == nil {
		return "Inbox"
	}
	return fmt.Sprintf("%s (%s)", m.mailbox.Name(), m.account)
}

func emailIDs(emails []model.Email) []string {
	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}
	return ids
}

func emailsByID(emails []model.Email, ids []string) []model.Email {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Email
	for _, e := range emails {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
