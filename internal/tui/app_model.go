package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

type screen int

const (
	screenMenu screen = iota
	screenList
	screenDetail
	screenForm
	screenQueue
)

type appModel struct {
	ctx       context.Context
	services  *service.ClientServices
	events    <-chan models.Event
	buildInfo models.AppBuildInfo

	currentScreen screen
	status        models.StatusResponse

	menu       menuModel
	list       listModel
	detail     detailModel
	form       formRecordModel
	queue      queueModel
	syncScreen syncModel

	err           error
	showError     bool
	errorOverlay  errorOverlayModel
	showConfirm   bool
	confirm       confirmModel
	pendingDelete *models.Record
	showBuildInfo bool
}

func newAppModel(ctx context.Context, services *service.ClientServices, events <-chan models.Event, buildInfo models.AppBuildInfo) appModel {
	return appModel{
		ctx:           ctx,
		services:      services,
		events:        events,
		buildInfo:     buildInfo,
		currentScreen: screenMenu,
		menu:          newMenuModel(),
		syncScreen:    newSyncModel(),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadStatus(), m.cmdWaitForEvent(), m.syncScreen.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrUserQuit
			return m, tea.Quit
		}
		if m.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				m.showError = false
				m.errorOverlay.message = ""
			}
			return m, nil
		}
		if m.showConfirm {
			return m.updateConfirm(msg)
		}
		if m.showBuildInfo {
			if key.Matches(msg, keys.esc) || key.Matches(msg, keys.version) {
				m.showBuildInfo = false
			}
			return m, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.syncScreen.spinner, cmd = m.syncScreen.spinner.Update(msg)
		return m, cmd
	case statusLoadedMsg:
		m.status = msg.status
		return m, nil
	case eventMsg:
		return m.handleEvent(msg)
	case listLoadedMsg:
		if msg.err != nil {
			m.list.loading = false
			m.showErrorf(humanizeError(msg.err))
			return m, nil
		}
		if msg.result.Collection == m.list.collection.Name {
			m.list.setItems(msg.result.Records, msg.result.Stale)
		}
		return m, nil
	case queueLoadedMsg:
		if msg.err != nil {
			m.queue.loading = false
			m.showErrorf(humanizeError(msg.err))
			return m, nil
		}
		m.queue.setWrites(msg.writes)
		return m, nil
	case syncDoneMsg:
		m.syncScreen.running = false
		if msg.err != nil {
			m.showErrorf(humanizeError(msg.err))
			return m, m.cmdLoadStatus()
		}
		m.setStatus(fmt.Sprintf("Синхронизация: отправлено %d, ошибок %d, осталось %d",
			msg.result.Replayed, msg.result.Failed, msg.result.RemainingInQueue))
		return m, tea.Batch(m.cmdLoadStatus(), m.reloadCurrent(), cmdClearStatus())
	case retryScheduledMsg:
		if msg.err != nil {
			m.showErrorf(humanizeError(msg.err))
			return m, nil
		}
		m.queue.status = "Повторная отправка запланирована"
		return m, cmdClearStatus()
	case itemSavedMsg:
		m.form.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeError(msg.err))
			return m, nil
		}
		m.currentScreen = screenList
		m.list.status = writeStatus(msg.result, "Запись сохранена")
		m.list.loading = true
		return m, tea.Batch(m.cmdLoadList(), m.cmdLoadStatus(), cmdClearStatus())
	case itemDeletedMsg:
		m.pendingDelete = nil
		if msg.err != nil {
			m.showErrorf(humanizeError(msg.err))
			return m, nil
		}
		m.currentScreen = screenList
		m.list.status = writeStatus(msg.result, "Запись удалена")
		m.list.loading = true
		return m, tea.Batch(m.cmdLoadList(), m.cmdLoadStatus(), cmdClearStatus())
	case copiedMsg:
		m.detail.status = "Скопировано!"
		return m, cmdClearStatus()
	case clearStatusMsg:
		m.setStatus("")
		m.queue.status = ""
		return m, nil
	case tea.WindowSizeMsg:
		return m, nil
	}

	switch m.currentScreen {
	case screenMenu:
		return m.updateMenu(msg)
	case screenList:
		return m.updateList(msg)
	case screenDetail:
		return m.updateDetail(msg)
	case screenForm:
		return m.updateForm(msg)
	case screenQueue:
		return m.updateQueue(msg)
	}

	return m, nil
}

func (m appModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo))
	}

	var body string
	switch m.currentScreen {
	case screenMenu:
		body = m.menu.View()
	case screenList:
		body = m.list.View()
	case screenDetail:
		body = m.detail.View()
	case screenForm:
		body = m.form.View()
	case screenQueue:
		body = m.queue.View()
	}

	body = renderStatusLine(m.status, m.syncScreen) + "\n\n" + body
	if m.showConfirm {
		body += "\n\n" + m.confirm.View()
	}
	if m.showError {
		body += "\n\n" + m.errorOverlay.View()
	}

	return appStyle.Render(body)
}

func (m *appModel) showErrorf(message string) {
	m.showError = true
	m.errorOverlay.message = message
}

func (m *appModel) setStatus(status string) {
	m.list.status = status
	m.detail.status = status
}

func writeStatus(result models.WriteResult, done string) string {
	if result.Queued {
		return "Нет связи: изменение сохранено и будет отправлено позже"
	}
	return done
}

func (m appModel) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil
	}

	cmds := []tea.Cmd{m.cmdWaitForEvent(), m.cmdLoadStatus()}
	switch msg.event.Type {
	case models.EventSyncCompleted:
		cmds = append(cmds, m.reloadCurrent())
	case models.EventRecordChanged:
		if m.currentScreen == screenList && msg.event.Collection == m.list.collection.Name {
			cmds = append(cmds, m.cmdLoadList())
		}
	}
	return m, tea.Batch(cmds...)
}

// reloadCurrent refreshes the data behind list-like screens.
func (m appModel) reloadCurrent() tea.Cmd {
	switch m.currentScreen {
	case screenList:
		return m.cmdLoadList()
	case screenQueue:
		return m.cmdLoadQueue()
	}
	return nil
}

func (m appModel) startSync() (tea.Model, tea.Cmd) {
	if m.syncScreen.running {
		return m, nil
	}
	m.syncScreen.running = true
	return m, m.cmdSync()
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		m.showConfirm = false
		if m.pendingDelete == nil {
			return m, nil
		}
		return m, m.cmdDeleteItem(*m.pendingDelete)
	case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
		m.showConfirm = false
		m.pendingDelete = nil
	}
	return m, nil
}

func (m appModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.menu.idx > 0 {
			m.menu.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.menu.idx < len(m.menu.items)-1 {
			m.menu.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		collection, ok := m.menu.current()
		if !ok {
			return m, nil
		}
		m.list = listModel{collection: collection, loading: true}
		m.currentScreen = screenList
		return m, m.cmdLoadList()
	case key.Matches(keyMsg, keys.sync):
		return m.startSync()
	case key.Matches(keyMsg, keys.queue):
		m.queue = queueModel{loading: true}
		m.currentScreen = screenQueue
		return m, m.cmdLoadQueue()
	case key.Matches(keyMsg, keys.version):
		m.showBuildInfo = true
	case key.Matches(keyMsg, keys.quit):
		m.err = ErrUserQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.list.idx > 0 {
			m.list.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.list.idx < len(m.list.items)-1 {
			m.list.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		record, ok := m.list.current()
		if !ok {
			return m, nil
		}
		m.detail = detailModel{record: record, writable: m.list.collection.Writable}
		m.currentScreen = screenDetail
	case key.Matches(keyMsg, keys.newItem):
		if !m.list.collection.Writable {
			return m, nil
		}
		m.form = newFormRecordModel(m.list.collection, nil)
		m.currentScreen = screenForm
	case key.Matches(keyMsg, keys.reload):
		m.list.loading = true
		return m, m.cmdLoadList()
	case key.Matches(keyMsg, keys.sync):
		return m.startSync()
	case key.Matches(keyMsg, keys.esc):
		m.currentScreen = screenMenu
	case key.Matches(keyMsg, keys.quit):
		m.err = ErrUserQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.copy):
		return m, cmdCopyToClipboard(prettyJSON(m.detail.record.Data))
	case key.Matches(keyMsg, keys.edit):
		if !m.detail.writable {
			return m, nil
		}
		record := m.detail.record
		m.form = newFormRecordModel(m.list.collection, &record)
		m.currentScreen = screenForm
	case key.Matches(keyMsg, keys.delete):
		if !m.detail.writable {
			return m, nil
		}
		record := m.detail.record
		m.pendingDelete = &record
		m.confirm = confirmModel{message: recordTitle(record)}
		m.showConfirm = true
	case key.Matches(keyMsg, keys.esc):
		m.currentScreen = screenList
	case key.Matches(keyMsg, keys.quit):
		m.err = ErrUserQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			if m.form.editing {
				m.currentScreen = screenDetail
			} else {
				m.currentScreen = screenList
			}
			return m, nil
		case key.Matches(keyMsg, keys.save):
			if m.form.submitting {
				return m, nil
			}
			payload, err := m.form.payload()
			if err != nil {
				m.showErrorf(err.Error())
				return m, nil
			}
			m.form.submitting = true
			if m.form.editing {
				return m, m.cmdUpdateItem(m.form.recordID, payload)
			}
			return m, m.cmdCreateItem(payload)
		}
	}

	var cmd tea.Cmd
	m.form.area, cmd = m.form.area.Update(msg)
	return m, cmd
}

func (m appModel) updateQueue(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.queue.idx > 0 {
			m.queue.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.queue.idx < len(m.queue.writes)-1 {
			m.queue.idx++
		}
	case key.Matches(keyMsg, keys.retry):
		return m, m.cmdRetryQueue()
	case key.Matches(keyMsg, keys.esc):
		m.currentScreen = screenMenu
	case key.Matches(keyMsg, keys.quit):
		m.err = ErrUserQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) cmdWaitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		return eventMsg{event: event, ok: ok}
	}
}

func (m appModel) cmdLoadStatus() tea.Cmd {
	ctx := m.ctx
	svc := m.services.StatusService
	return func() tea.Msg {
		return statusLoadedMsg{status: svc.Status(ctx)}
	}
}

func (m appModel) cmdLoadList() tea.Cmd {
	ctx := m.ctx
	svc := m.services.RecordService
	collection := m.list.collection.Name
	return func() tea.Msg {
		result, err := svc.List(ctx, collection)
		return listLoadedMsg{result: result, err: err}
	}
}

func (m appModel) cmdLoadQueue() tea.Cmd {
	ctx := m.ctx
	svc := m.services.QueueService
	return func() tea.Msg {
		writes, err := svc.List(ctx)
		return queueLoadedMsg{writes: writes, err: err}
	}
}

func (m appModel) cmdSync() tea.Cmd {
	ctx := m.ctx
	svc := m.services.SyncService
	return func() tea.Msg {
		result, err := svc.Sync(ctx, models.TriggerManual)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m appModel) cmdRetryQueue() tea.Cmd {
	ctx := m.ctx
	queue := m.services.QueueService
	job := m.services.SyncJob
	return func() tea.Msg {
		if err := queue.ResetBackoff(ctx); err != nil {
			return retryScheduledMsg{err: err}
		}
		job.Trigger(models.TriggerManual)
		return retryScheduledMsg{}
	}
}

func (m appModel) cmdCreateItem(payload []byte) tea.Cmd {
	ctx := m.ctx
	svc := m.services.RecordService
	collection := m.form.collection.Name
	return func() tea.Msg {
		result, err := svc.Create(ctx, collection, payload)
		return itemSavedMsg{result: result, err: err}
	}
}

func (m appModel) cmdUpdateItem(id int64, payload []byte) tea.Cmd {
	ctx := m.ctx
	svc := m.services.RecordService
	collection := m.form.collection.Name
	return func() tea.Msg {
		result, err := svc.Update(ctx, collection, id, payload)
		return itemSavedMsg{result: result, err: err}
	}
}

func (m appModel) cmdDeleteItem(record models.Record) tea.Cmd {
	ctx := m.ctx
	svc := m.services.RecordService
	return func() tea.Msg {
		result, err := svc.Delete(ctx, record.Collection, record.ID)
		return itemDeletedMsg{result: result, err: err}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return itemSavedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
