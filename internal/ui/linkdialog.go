package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"

	"almanah/internal/link"
	"almanah/internal/linkdialog"
)

// LinkDialog is the "Add Link" dialog. It is built once per main window and
// reused; all decisions are left to the linkdialog controller.
type LinkDialog struct {
	ctrl   *linkdialog.Controller
	types  []link.Type
	onLink func(link.Link)

	typeSelect  *widget.Select
	description *widget.Label
	valueLabel  *widget.Label
	value       *widget.Entry
	value2Label *widget.Label
	value2      *widget.Entry
	value2Box   *fyne.Container
	problem     *widget.Label
	add         *widget.Button
	cancel      *widget.Button

	dlg *dialog.CustomDialog
}

func newLinkDialog(parent fyne.Window, registry *link.Registry, onLink func(link.Link)) *LinkDialog {
	d := &LinkDialog{
		ctrl:   linkdialog.New(registry),
		types:  registry.Types(),
		onLink: onLink,
	}

	names := make([]string, len(d.types))
	for i, t := range d.types {
		names[i] = t.Name
	}
	d.typeSelect = widget.NewSelect(names, d.typeChanged)

	d.description = widget.NewLabel("")
	d.description.Wrapping = fyne.TextWrapWord
	d.valueLabel = widget.NewLabel("")
	d.value = widget.NewEntry()
	d.value.OnChanged = d.ctrl.SetValue
	d.value.OnSubmitted = func(string) { d.confirm() }
	d.value2Label = widget.NewLabel("")
	d.value2 = widget.NewEntry()
	d.value2.OnChanged = d.ctrl.SetValue2
	d.value2.OnSubmitted = func(string) { d.confirm() }
	d.value2Box = container.NewVBox(d.value2Label, d.value2)

	d.problem = widget.NewLabel("")
	d.problem.Importance = widget.DangerImportance
	d.problem.Hide()

	content := container.NewVBox(
		d.typeSelect,
		d.description,
		d.valueLabel,
		d.value,
		d.value2Box,
		d.problem,
	)

	d.cancel = widget.NewButton(lang.L("Cancel"), d.close)
	d.add = widget.NewButton(lang.L("Add"), d.confirm)
	d.add.Importance = widget.HighImportance

	d.dlg = dialog.NewCustomWithoutButtons(lang.L("Add Link"), content, parent)
	d.dlg.SetButtons([]fyne.CanvasObject{d.cancel, d.add})
	d.dlg.SetOnClosed(d.ctrl.CloseRequest)
	d.dlg.Resize(fyne.NewSize(400, 0))
	return d
}

// Show opens the dialog with whatever was left in it last time.
func (d *LinkDialog) Show() {
	d.ctrl.Show()
	d.problem.Hide()
	d.sync()
	d.dlg.Show()
}

func (d *LinkDialog) close() {
	d.ctrl.SetValue(d.value.Text)
	d.ctrl.SetValue2(d.value2.Text)
	d.ctrl.CloseRequest()
	d.dlg.Hide()
}

func (d *LinkDialog) typeChanged(name string) {
	for _, t := range d.types {
		if t.Name == name {
			if err := d.ctrl.SelectType(t.ID); err != nil {
				d.showProblem(err)
				return
			}
			break
		}
	}
	d.problem.Hide()
	d.sync()
}

func (d *LinkDialog) confirm() {
	d.ctrl.SetValue(d.value.Text)
	d.ctrl.SetValue2(d.value2.Text)

	l, err := d.ctrl.Confirm()
	if err != nil {
		d.showProblem(err)
		return
	}

	d.dlg.Hide()
	d.value.SetText("")
	d.value2.SetText("")
	d.onLink(l)
}

func (d *LinkDialog) showProblem(err error) {
	d.problem.SetText(err.Error())
	d.problem.Show()
}

// sync copies the controller state onto the widgets.
func (d *LinkDialog) sync() {
	t, ok := d.ctrl.Selected()
	if !ok {
		return
	}
	if d.typeSelect.Selected != t.Name {
		d.typeSelect.SetSelected(t.Name)
	}
	d.description.SetText(t.Description)
	d.valueLabel.SetText(t.Value.Label)
	d.value.SetPlaceHolder(t.Value.Label)
	d.value2Label.SetText(t.Value2.Label)
	d.value2.SetPlaceHolder(t.Value2.Label)

	if d.ctrl.Value2Visible() {
		d.value2Box.Show()
	} else {
		d.value2Box.Hide()
	}
}
