package main

import (
	"fmt"
)

const completionScript = `#! /bin/bash

_segparse_autocomplete() {
    local cur

    if declare -F _init_completion >/dev/null 2>&1; then
        _init_completion -n "=:" 2>/dev/null
    fi

    if [[ -z "$cur" ]]; then
        cur="${COMP_WORDS[COMP_CWORD]}"
    fi

    local suggestions=$(segparse complete -- "${COMP_WORDS[@]}")

    if [ $? -eq 0 ]; then
        COMPREPLY=( $(compgen -W "$suggestions" -- "$cur") )
    fi
}

complete -F _segparse_autocomplete segparse
`

func bashCommand(ui UI) error {
	_, err := fmt.Fprint(ui.Out, completionScript)
	return err
}
