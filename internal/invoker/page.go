package invoker

import (
	"context"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/results"
)

// executePage builds the page and model, runs the selected handler and
// executes its result. Failures are returned to the pipeline as-is.
func (inv *Invoker) executePage(ctx context.Context) error {
	pc := inv.pc
	desc := pc.ActionDescriptor

	page, err := inv.entry.PageFactory(pc)
	if page != nil {
		inv.page = page
		pc.Page = page
	}
	if err != nil {
		return err
	}
	if page == nil {
		return domain.ErrNilPage
	}

	var model any
	if desc.ModelType == nil || inv.entry.ModelFactory == nil {
		model = page
	} else {
		model, err = inv.entry.ModelFactory(pc)
		if model != nil {
			inv.model = model
			inv.ownsModel = true
		}
		if err != nil {
			return err
		}
		if model == nil {
			return domain.ErrNilModel
		}
	}
	pc.ViewData.Model = model

	var result domain.Result
	if handler := inv.selector.Select(pc); handler != nil {
		exec, err := inv.executors.Create(handler)
		if err != nil {
			return err
		}
		result, err = exec(ctx, page, model)
		if err != nil {
			return err
		}
	}

	if result == nil {
		result = results.NewPageViewResult(page)
	}

	inv.result = result
	return result.ExecuteResult(ctx, pc)
}
